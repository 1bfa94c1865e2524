package experiments

import (
	"stackrankdice/agent"
	"stackrankdice/experiments/metrics"
	"stackrankdice/session"
)

var baseline = metrics.AgentConfig{ID: 0, Name: "default", Profile: agent.DefaultProfile()}

func profile(aggressiveness, territoryBias, caution, minWin float64) agent.Profile {
	return agent.Profile{
		Aggressiveness:    aggressiveness,
		TerritoryBias:     territoryBias,
		Caution:           caution,
		MinWinProbability: minWin,
	}
}

var styleConfigs = []metrics.AgentConfig{
	{ID: 1, Name: "reckless", Profile: profile(1, 0.5, 0, 0.3)},
	{ID: 2, Name: "territorial", Profile: profile(0.5, 2, 0.25, 0.5)},
	{ID: 3, Name: "careful", Profile: profile(1, 0.5, 1, 0.65)},
	{ID: 4, Name: "sniper", Profile: profile(1, 0, 0.5, 0.8)},
}

// BaselineTournament pits the default AI against the random baseline.
func BaselineTournament(setup session.Setup, games int) Tournament {
	random := metrics.AgentConfig{ID: 99, Name: "random", Random: true}
	return Tournament{
		Name:     "baseline",
		Setup:    setup,
		Games:    games,
		Configs:  []metrics.AgentConfig{baseline, random},
		MatchUps: [][]metrics.AgentConfig{{baseline, random}},
	}
}

// StyleTournament pairs each play style against the default AI.
func StyleTournament(setup session.Setup, games int) Tournament {
	matchUps := [][]metrics.AgentConfig{}
	for _, config := range styleConfigs {
		matchUps = append(matchUps, []metrics.AgentConfig{baseline, config})
	}
	return Tournament{
		Name:     "styles",
		Setup:    setup,
		Games:    games,
		Configs:  append([]metrics.AgentConfig{baseline}, styleConfigs...),
		MatchUps: matchUps,
	}
}
