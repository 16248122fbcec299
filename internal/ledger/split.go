package ledger

// GameSharePercent of every mint goes to the active pool; the rest, including
// any integer remainder, goes to the owner. Computing the owner share as the
// remainder (instead of flooring both shares) keeps gameAmount+ownerAmount ==
// amount for every amount, amount=1 included.
const GameSharePercent = 80

// Split divides a mint amount into the pool share and the owner share.
// Integer arithmetic only; ledger math must not round through floats. The
// quotient/remainder form equals floor(amount*80/100) without overflowing
// uint64 for large amounts.
func Split(amount uint64) (gameAmount, ownerAmount uint64) {
	gameAmount = (amount/100)*GameSharePercent + (amount%100)*GameSharePercent/100
	ownerAmount = amount - gameAmount
	return gameAmount, ownerAmount
}
