// meta/meta.go
package meta

// MAX_DICE is the largest dice stack a region can hold.
const MAX_DICE = 8

// DIE_FACES is the number of faces on every die.
const DIE_FACES = 6

// MAX_TURNS stops a game that has not produced a winner.
const MAX_TURNS = 300

// MAX_REJECTIONS is how many consecutive rejected decisions an agent gets before the
// session falls back to the first legal move.
const MAX_REJECTIONS = 5
