package library

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestSnapshotRoundTrip(test *testing.T) {
	test.Parallel()
	system := mustSystem(test, "12.5",
		mustBook(test, "Dune", "2.00", map[string]int{"1": 2, "2": 0}),
		mustBook(test, "Emma", "1.25", map[string]int{"1": 1}),
	)
	mustJoin(test, system, "Alice", "100")
	carol := NewDiscountedMember(mustMemberName(test, "Carol"), mustDecimal(test, "40"), mustDiscountRate(test, "50"))
	if err := system.AddMember(carol); err != nil {
		test.Fatalf("add member: %v", err)
	}
	mustBorrow(test, system, "Alice", "Dune", "1", testEpoch)
	mustBorrow(test, system, "Carol", "Emma", "1", testEpoch.Add(time.Second))

	restored, err := RestoreSystem(system.Snapshot())
	if err != nil {
		test.Fatalf("restore: %v", err)
	}
	if restored.ID() != system.ID() {
		test.Fatalf("expected id %s, got %s", system.ID(), restored.ID())
	}
	assertDecimal(test, "late fee", "12.5", restored.Library().LateFeePercentage().Decimal())

	dune, err := restored.GetBook("Dune")
	if err != nil {
		test.Fatalf("get book: %v", err)
	}
	if stockOf(test, dune, "1") != 1 || stockOf(test, dune, "2") != 0 {
		test.Fatalf("unexpected stock %v", dune.Editions())
	}

	restoredCarol, err := restored.GetMember(carol.Name())
	if err != nil {
		test.Fatalf("get member: %v", err)
	}
	if rate, ok := restoredCarol.FeePolicy().DiscountRate(); !ok || !rate.Decimal().Equal(decimal.NewFromInt(50)) {
		test.Fatalf("expected discounted policy to survive, got %+v", restoredCarol.FeePolicy())
	}
	if id, linked := restoredCarol.LibraryID(); !linked || id != system.ID() {
		test.Fatalf("expected restored member linked to %s", system.ID())
	}
	loans := restoredCarol.Loans()
	if len(loans) != 1 || loans[0].Title() != "Emma" || !loans[0].DueAt().Equal(testEpoch.Add(time.Second+LoanPeriod)) {
		test.Fatalf("unexpected loans %+v", loans)
	}

	charge, err := restored.Return(carol.Name(), "Emma", testEpoch)
	if err != nil {
		test.Fatalf("return on restored system: %v", err)
	}
	assertDecimal(test, "discounted charge", "0.625", charge.Total)
}

func TestRestoreSystemRejectsInvalidSnapshots(test *testing.T) {
	test.Parallel()
	rate := decimal.NewFromInt(150)
	valid := func() SystemSnapshot {
		return SystemSnapshot{
			LibraryID:         "library-1",
			LateFeePercentage: decimal.NewFromInt(10),
			Books: []BookSnapshot{{
				Title:         "Dune",
				Authors:       []string{"Frank Herbert"},
				PublishedYear: 1965,
				Editions:      map[string]int{"1": 1},
				RentalFee:     decimal.NewFromInt(2),
			}},
			Members: []MemberSnapshot{{Name: "Alice", Balance: decimal.NewFromInt(5), FeePolicy: "standard"}},
		}
	}
	cases := []struct {
		name   string
		mutate func(snapshot *SystemSnapshot)
		err    error
	}{
		{name: "empty id", mutate: func(snapshot *SystemSnapshot) { snapshot.LibraryID = " " }, err: ErrSystemNotInitialized},
		{name: "negative late fee", mutate: func(snapshot *SystemSnapshot) { snapshot.LateFeePercentage = decimal.NewFromInt(-1) }, err: ErrInvalidLateFee},
		{name: "negative stock", mutate: func(snapshot *SystemSnapshot) { snapshot.Books[0].Editions["1"] = -1 }, err: ErrInvalidStock},
		{name: "duplicate book", mutate: func(snapshot *SystemSnapshot) { snapshot.Books = append(snapshot.Books, snapshot.Books[0]) }, err: ErrAlreadyExists},
		{name: "unknown policy", mutate: func(snapshot *SystemSnapshot) { snapshot.Members[0].FeePolicy = "vip" }, err: ErrInvalidFeePolicy},
		{name: "discount without rate", mutate: func(snapshot *SystemSnapshot) { snapshot.Members[0].FeePolicy = "discounted" }, err: ErrInvalidDiscountRate},
		{name: "discount out of range", mutate: func(snapshot *SystemSnapshot) {
			snapshot.Members[0].FeePolicy = "discounted"
			snapshot.Members[0].DiscountRate = &rate
		}, err: ErrInvalidDiscountRate},
		{name: "duplicate member", mutate: func(snapshot *SystemSnapshot) { snapshot.Members = append(snapshot.Members, snapshot.Members[0]) }, err: ErrAlreadyExists},
		{name: "loan of unknown book", mutate: func(snapshot *SystemSnapshot) {
			snapshot.Members[0].Loans = []LoanSnapshot{{Title: "Emma", Edition: "1", DueAt: testEpoch}}
		}, err: ErrNotFound},
		{name: "loan held twice", mutate: func(snapshot *SystemSnapshot) {
			loan := LoanSnapshot{Title: "Dune", Edition: "1", DueAt: testEpoch}
			snapshot.Members[0].Loans = []LoanSnapshot{loan, loan}
		}, err: ErrAlreadyExists},
	}
	for _, tc := range cases {
		snapshot := valid()
		tc.mutate(&snapshot)
		if _, err := RestoreSystem(snapshot); !errors.Is(err, tc.err) {
			test.Fatalf("%s: expected %v, got %v", tc.name, tc.err, err)
		}
	}
	if _, err := RestoreSystem(valid()); err != nil {
		test.Fatalf("valid snapshot: %v", err)
	}
}
