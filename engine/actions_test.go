package engine

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"pokerhub/models"
)

func act(t *testing.T, gs *models.GameState, kind models.ActionKind, amount int) {
	t.Helper()
	p := gs.ActivePlayer()
	if p == nil {
		t.Fatalf("no active player in phase %s", gs.Phase)
	}
	if err := ProcessAction(gs, p.ID, models.Action{Kind: kind, Amount: amount}); err != nil {
		t.Fatalf("%s by %s: %v", kind, p.ID, err)
	}
}

// playHandPassively calls every bet and checks everything down to showdown.
func playHandPassively(t *testing.T, gs *models.GameState) {
	t.Helper()
	for i := 0; gs.Phase.IsStreet(); i++ {
		if i > 100 {
			t.Fatal("hand did not terminate")
		}
		p := gs.ActivePlayer()
		if p == nil {
			t.Fatalf("no active player in phase %s", gs.Phase)
		}
		if gs.CurrentBet > p.Bet {
			act(t, gs, models.ActionCall, 0)
		} else {
			act(t, gs, models.ActionCheck, 0)
		}
	}
}

func TestCheckThroughToShowdown(t *testing.T) {
	gs := newTestTable(t, 3)
	playHandPassively(t, gs)

	if gs.Phase != models.PhaseShowdown {
		t.Fatalf("phase = %s, want showdown", gs.Phase)
	}
	if gs.Pot != 60 {
		t.Errorf("pot = %d, want 60", gs.Pot)
	}
	if len(gs.CommunityCards) != 5 {
		t.Errorf("board has %d cards, want 5", len(gs.CommunityCards))
	}
	paid := 0
	for _, w := range gs.Winners {
		paid += w.Amount
	}
	if paid != 60 {
		t.Errorf("winners paid %d, want the whole pot of 60", paid)
	}
	stacks := totalChips(gs) - gs.Pot
	if stacks != 3000 {
		t.Errorf("stacks after payout = %d, want 3000", stacks)
	}
	contributed := 0
	for _, p := range gs.Players {
		contributed += p.TotalBet
	}
	if gs.Pot != contributed {
		t.Errorf("pot %d != total contributions %d", gs.Pot, contributed)
	}
}

func TestFoldRequiresFacingBet(t *testing.T) {
	gs := newTestTable(t, 3)
	act(t, gs, models.ActionCall, 0) // UTG
	act(t, gs, models.ActionCall, 0) // small blind

	// Big blind faces no raise and may not fold.
	bb := gs.ActivePlayer()
	if err := ProcessAction(gs, bb.ID, models.Action{Kind: models.ActionFold}); err == nil {
		t.Fatal("fold with no bet to face should be rejected")
	}
	if bb.Status != models.StatusActive {
		t.Errorf("rejected fold mutated status: %s", bb.Status)
	}
	act(t, gs, models.ActionCheck, 0)
	if gs.Phase != models.PhaseFlop {
		t.Errorf("phase = %s, want flop", gs.Phase)
	}
}

func TestUncontestedPotSkipsShowdown(t *testing.T) {
	gs := newTestTable(t, 3)
	act(t, gs, models.ActionFold, 0) // UTG
	act(t, gs, models.ActionFold, 0) // small blind

	if gs.Phase != models.PhaseShowdown {
		t.Fatalf("phase = %s, want showdown", gs.Phase)
	}
	if len(gs.Winners) != 1 {
		t.Fatalf("winners = %+v, want exactly one", gs.Winners)
	}
	w := gs.Winners[0]
	if w.PlayerID != "p2" || w.Amount != 30 || w.HandRank != "uncontested" {
		t.Errorf("winner = %+v, want p2 taking 30 uncontested", w)
	}
	if w.HandCards != nil {
		t.Error("uncontested winner must not reveal cards")
	}
	if gs.PlayerByID("p2").Chips != 1010 {
		t.Errorf("winner chips = %d, want 1010", gs.PlayerByID("p2").Chips)
	}
}

func TestRaiseReopensBetting(t *testing.T) {
	gs := newTestTable(t, 3)

	// UTG raises to 60: the min-raise increment becomes 40.
	act(t, gs, models.ActionRaise, 60)
	if gs.CurrentBet != 60 || gs.MinRaise != 40 {
		t.Fatalf("currentBet=%d minRaise=%d, want 60/40", gs.CurrentBet, gs.MinRaise)
	}

	sb := gs.ActivePlayer()
	if sb.Seat != 1 {
		t.Fatalf("active seat = %d, want small blind at 1", sb.Seat)
	}
	var raiseBounds *models.LegalAction
	for _, la := range LegalActions(gs, sb.ID) {
		if la.Kind == models.ActionRaise {
			la := la
			raiseBounds = &la
		}
	}
	if raiseBounds == nil || raiseBounds.Min != 100 || raiseBounds.Max != 1000 {
		t.Fatalf("small blind raise bounds = %+v, want min 100 max 1000", raiseBounds)
	}

	act(t, gs, models.ActionCall, 0) // small blind
	act(t, gs, models.ActionCall, 0) // big blind
	if gs.Phase != models.PhaseFlop {
		t.Fatalf("phase = %s, want flop", gs.Phase)
	}
	if gs.Pot != 180 {
		t.Errorf("pot = %d, want 180", gs.Pot)
	}
	if gs.CurrentBet != 0 || gs.MinRaise != 20 {
		t.Errorf("new street currentBet=%d minRaise=%d, want 0/20", gs.CurrentBet, gs.MinRaise)
	}
	if gs.ActiveSeat != 1 {
		t.Errorf("postflop first to act = seat %d, want 1", gs.ActiveSeat)
	}
}

func TestRaiseBoundsEnforced(t *testing.T) {
	gs := newTestTable(t, 3)
	utg := gs.ActivePlayer()

	if err := ProcessAction(gs, utg.ID, models.Action{Kind: models.ActionRaise, Amount: 39}); err == nil {
		t.Error("raise below minimum should be rejected")
	}
	if err := ProcessAction(gs, utg.ID, models.Action{Kind: models.ActionRaise, Amount: 1001}); err == nil {
		t.Error("raise above stack should be rejected")
	}
	if gs.ActiveSeat != 0 || gs.CurrentBet != 20 {
		t.Errorf("rejected raise mutated state: activeSeat=%d currentBet=%d", gs.ActiveSeat, gs.CurrentBet)
	}
	// Exactly the minimum is fine.
	act(t, gs, models.ActionRaise, 40)
	if gs.CurrentBet != 40 || gs.MinRaise != 20 {
		t.Errorf("currentBet=%d minRaise=%d, want 40/20", gs.CurrentBet, gs.MinRaise)
	}
}

func TestAllInShortRaiseDoesNotReopen(t *testing.T) {
	gs, err := NewGameState("t1", testConfig(3))
	if err != nil {
		t.Fatal(err)
	}
	for i, chips := range []int{30, 1000, 1000} {
		id := []string{"short", "sb", "bb"}[i]
		if err := AddPlayer(gs, id, id, i); err != nil {
			t.Fatal(err)
		}
		gs.Players[i].Chips = chips
	}
	gs.DealerSeat = 0
	if err := StartHand(gs); err != nil {
		t.Fatal(err)
	}

	// The short stack shoves 30, under the 40 needed for a full raise.
	act(t, gs, models.ActionAllIn, 0)
	if gs.CurrentBet != 30 {
		t.Fatalf("currentBet = %d, want 30", gs.CurrentBet)
	}
	if gs.MinRaise != 20 {
		t.Errorf("short all-in must not grow the min raise, got %d", gs.MinRaise)
	}

	// The blinds still owe the 30 but a re-raise prices from 50.
	sb := gs.ActivePlayer()
	for _, la := range LegalActions(gs, sb.ID) {
		if la.Kind == models.ActionRaise && la.Min != 50 {
			t.Errorf("raise min = %d, want 50", la.Min)
		}
	}
	act(t, gs, models.ActionCall, 0)
	act(t, gs, models.ActionCall, 0)
	if gs.Phase != models.PhaseFlop {
		t.Fatalf("phase = %s, want flop", gs.Phase)
	}
	if gs.Pot != 90 {
		t.Errorf("pot = %d, want 90", gs.Pot)
	}
}

func TestShortCallGoesAllIn(t *testing.T) {
	gs, err := NewGameState("t1", testConfig(3))
	if err != nil {
		t.Fatal(err)
	}
	for i, chips := range []int{10, 1000, 1000} {
		id := []string{"short", "sb", "bb"}[i]
		if err := AddPlayer(gs, id, id, i); err != nil {
			t.Fatal(err)
		}
		gs.Players[i].Chips = chips
	}
	gs.DealerSeat = 0
	if err := StartHand(gs); err != nil {
		t.Fatal(err)
	}

	act(t, gs, models.ActionCall, 0)
	short := gs.PlayerByID("short")
	if short.Status != models.StatusAllIn || short.Chips != 0 || short.Bet != 10 {
		t.Fatalf("short call should be all-in for 10, got %+v", short)
	}
	// The price of the round is unchanged by a short call.
	if gs.CurrentBet != 20 {
		t.Errorf("currentBet = %d, want 20", gs.CurrentBet)
	}
}

func TestTurnOrderEnforced(t *testing.T) {
	gs := newTestTable(t, 3)
	err := ProcessAction(gs, "p1", models.Action{Kind: models.ActionCall})
	if !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("got %v, want ErrNotYourTurn", err)
	}
	err = ProcessAction(gs, "ghost", models.Action{Kind: models.ActionCall})
	if !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("got %v, want ErrPlayerNotFound", err)
	}
}

func TestLegalActionsOnlyForActivePlayer(t *testing.T) {
	gs := newTestTable(t, 3)
	if got := LegalActions(gs, "p1"); got != nil {
		t.Errorf("out-of-turn player got actions: %+v", got)
	}

	got := LegalActions(gs, "p0")
	kinds := map[models.ActionKind]models.LegalAction{}
	for _, la := range got {
		kinds[la.Kind] = la
	}
	if _, ok := kinds[models.ActionFold]; !ok {
		t.Error("facing a bet, fold must be legal")
	}
	if _, ok := kinds[models.ActionCheck]; ok {
		t.Error("facing a bet, check must not be legal")
	}
	if call := kinds[models.ActionCall]; call.Max != 20 {
		t.Errorf("call amount = %d, want 20", call.Max)
	}
	if raise := kinds[models.ActionRaise]; raise.Min != 40 || raise.Max != 1000 {
		t.Errorf("raise bounds = %+v, want 40..1000", raise)
	}
	if allin := kinds[models.ActionAllIn]; allin.Max != 1000 {
		t.Errorf("all-in amount = %d, want 1000", allin.Max)
	}
}

func TestFoldToOneEndsHandMidStreet(t *testing.T) {
	gs := newTestTable(t, 3)
	act(t, gs, models.ActionCall, 0)
	act(t, gs, models.ActionCall, 0)
	act(t, gs, models.ActionCheck, 0)

	// On the flop both remaining opponents fold to a bet.
	act(t, gs, models.ActionRaise, 40)
	act(t, gs, models.ActionFold, 0)
	act(t, gs, models.ActionFold, 0)

	if gs.Phase != models.PhaseShowdown {
		t.Fatalf("phase = %s, want showdown", gs.Phase)
	}
	if len(gs.Winners) != 1 || gs.Winners[0].HandRank != "uncontested" {
		t.Fatalf("winners = %+v, want one uncontested", gs.Winners)
	}
	if gs.Winners[0].Amount != 100 {
		t.Errorf("payout = %d, want 100", gs.Winners[0].Amount)
	}
}

func TestStateSurvivesSerializationMidHand(t *testing.T) {
	gs := newTestTable(t, 3)
	act(t, gs, models.ActionRaise, 60)

	raw, err := json.Marshal(gs)
	if err != nil {
		t.Fatal(err)
	}
	var restored models.GameState
	if err := json.Unmarshal(raw, &restored); err != nil {
		t.Fatal(err)
	}

	if restored.Deck == nil || restored.Deck.Remaining() != gs.Deck.Remaining() {
		t.Fatal("deck must survive the round trip")
	}
	if restored.Players[0].HasActedThisRound != gs.Players[0].HasActedThisRound {
		t.Fatal("acted flags must survive the round trip")
	}

	// The restored copy plays on exactly like the original.
	playHandPassively(t, &restored)
	playHandPassively(t, gs)

	gs.LastActionTime = time.Time{}
	restored.LastActionTime = time.Time{}
	a, _ := json.Marshal(gs)
	b, _ := json.Marshal(&restored)
	if string(a) != string(b) {
		t.Errorf("diverged after restore:\n%s\n%s", a, b)
	}
}
