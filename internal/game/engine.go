package game

import "fmt"

// Advance performs one step of the turn engine and returns the next round.
// The input round is never modified. Each call does at most one draw per
// hand, so an external scheduler can pace play step by step.
func Advance(r Round) (Round, error) {
	switch r.State {
	case StateInitial:
		return r, ErrRoundNotStarted
	case StateEnd:
		return r, ErrRoundOver
	}

	next := r.Clone()

	switch next.State {
	case StateDealingSplit:
		for i := range next.Hands {
			card, err := next.Shoe.Draw()
			if err != nil {
				return r, fmt.Errorf("dealing split hand %d: %w", i+1, err)
			}
			next.Hands[i] = append(next.Hands[i], card)
		}
		next.State = StatePlayer

	case StatePlayer:
		if next.ActiveHand >= len(next.Hands) {
			next.State = StateDealer
			break
		}
		hand := next.Hands[next.ActiveHand]
		if next.isSplitAces(hand) || hand.Score() >= PlayerStandsOn {
			next.stand()
			break
		}
		card, err := next.Shoe.Draw()
		if err != nil {
			return r, fmt.Errorf("hitting hand %d: %w", next.ActiveHand+1, err)
		}
		next.Hands[next.ActiveHand] = append(hand, card)

	case StateDealer:
		if next.Dealer.Score() >= DealerStandsOn {
			next.State = StateEnd
			break
		}
		card, err := next.Shoe.Draw()
		if err != nil {
			return r, fmt.Errorf("hitting dealer: %w", err)
		}
		next.Dealer = append(next.Dealer, card)

	default:
		return r, fmt.Errorf("game: unknown state %q", next.State)
	}

	return next, nil
}

// isSplitAces reports whether hand is a split ace that already got its one card
func (r Round) isSplitAces(hand Hand) bool {
	return r.IsSplit() && len(hand) == 2 && hand[0].IsAce()
}

// stand finishes the active hand and moves to the next one or the dealer
func (r *Round) stand() {
	if r.ActiveHand < len(r.Hands)-1 {
		r.ActiveHand++
		return
	}
	r.State = StateDealer
}
