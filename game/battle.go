package game

import (
	"fmt"

	"stackrankdice/dice"
	"stackrankdice/utils"
)

type Result int

const (
	AttackerWins Result = iota
	DefenderWins
)

func (r Result) String() string {
	if r == AttackerWins {
		return "attacker wins"
	}
	return "defender wins"
}

// Clash is everything the battle resolver needs to know about the two regions involved.
type Clash struct {
	Attack        Attack
	AttackerOwner int
	AttackerDice  int
	DefenderOwner int
	DefenderDice  int
}

// RegionChange is the owner and dice count of a region after a battle.
type RegionChange struct {
	Region int
	Owner  int
	Dice   int
}

type BattleOutcome struct {
	Attack        Attack
	AttackerRolls []int
	DefenderRolls []int
	AttackerSum   int
	DefenderSum   int
	Result        Result
	Changes       []RegionChange // Attacking region first, then the defending region
}

// Conquered reports whether the defending region changed hands.
func (o BattleOutcome) Conquered() bool {
	return o.Result == AttackerWins
}

// ResolveBattle rolls every die on both sides, attacker first, and settles the clash. The
// attacker wins only with a strictly greater sum. Nothing is mutated: the changes are
// returned for the caller to apply.
func ResolveBattle(rules Rules, clash Clash, src dice.Source) BattleOutcome {
	if clash.AttackerDice < 2 || clash.AttackerDice > rules.MaxDice() {
		panic(fmt.Sprintf("cannot resolve battle: attacker has %d dice", clash.AttackerDice))
	}
	if clash.DefenderDice < 1 || clash.DefenderDice > rules.MaxDice() {
		panic(fmt.Sprintf("cannot resolve battle: defender has %d dice", clash.DefenderDice))
	}

	attackerRolls := dice.Roll(src, clash.AttackerDice)
	defenderRolls := dice.Roll(src, clash.DefenderDice)
	outcome := BattleOutcome{
		Attack:        clash.Attack,
		AttackerRolls: attackerRolls,
		DefenderRolls: defenderRolls,
		AttackerSum:   utils.Sum(attackerRolls),
		DefenderSum:   utils.Sum(defenderRolls),
	}

	from, to := clash.Attack.From, clash.Attack.To
	if outcome.AttackerSum > outcome.DefenderSum {
		outcome.Result = AttackerWins
		conquered, left := rules.DetermineSpoils(clash.AttackerDice, src)
		outcome.Changes = []RegionChange{
			{Region: from, Owner: clash.AttackerOwner, Dice: left},
			{Region: to, Owner: clash.AttackerOwner, Dice: conquered},
		}
		return outcome
	}

	outcome.Result = DefenderWins
	attackerLeft, captured, defenderLeft := rules.DetermineDefeat(clash.AttackerDice, clash.DefenderDice, src)
	fromOwner := clash.AttackerOwner
	if captured {
		fromOwner = clash.DefenderOwner
	}
	outcome.Changes = []RegionChange{
		{Region: from, Owner: fromOwner, Dice: attackerLeft},
		{Region: to, Owner: clash.DefenderOwner, Dice: defenderLeft},
	}
	return outcome
}
