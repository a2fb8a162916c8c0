package simulation

import (
	"math"
	"testing"
	"time"
)

func TestExpandLeaseMidMonthStart(t *testing.T) {
	anchor := date(2025, time.January, 1)
	lease := Lease{
		ID:         "ls1",
		EntityID:   "e1",
		TenantName: "Acme",
		Property:   "HQ Tower",
		NetAmount:  10000,
		Frequency:  FreqMonthly,
		PaymentDay: 1,
		StartDate:  date(2025, time.March, 15),
		EndDate:    date(2025, time.December, 31),
	}

	events := expandLeases([]Lease{lease}, anchor, 730, 100)
	if len(events) != 10 {
		t.Fatalf("expected 1 pro-rata + 9 full events, got %d", len(events))
	}

	stub := events[0]
	if !stub.Date.Equal(lease.StartDate) {
		t.Errorf("stub dated %v, want the lease start", stub.Date)
	}
	// 17 active days of the 31-day Mar 1 - Apr 1 period
	want := 10000 * 17.0 / 31.0
	if math.Abs(stub.Amount-want) > 0.01 || stub.Amount >= 10000 {
		t.Errorf("stub amount = %.2f, want pro-rated %.2f", stub.Amount, want)
	}

	for i, ev := range events[1:] {
		if ev.Amount != 10000 {
			t.Errorf("event %d amount = %.2f, want 10000", i+1, ev.Amount)
		}
		if ev.Date.Day() != 1 {
			t.Errorf("event %d dated %v, want the 1st of the month", i+1, ev.Date)
		}
	}
	last := events[len(events)-1]
	if !last.Date.Equal(date(2025, time.December, 1)) {
		t.Errorf("last event dated %v, want 2025-12-01", last.Date)
	}
}

func TestExpandLeaseQuarterlyStub(t *testing.T) {
	anchor := date(2025, time.January, 1)
	lease := Lease{
		ID: "ls2", EntityID: "e1", TenantName: "Beta", Property: "Warehouse",
		NetAmount: 10000, Frequency: FreqQuarterly, PaymentDay: 1,
		StartDate: date(2025, time.February, 15),
		EndDate:   date(2025, time.December, 31),
	}

	events := expandLeases([]Lease{lease}, anchor, 730, 100)
	if len(events) == 0 {
		t.Fatal("expected events")
	}
	// stub period Jan 1 - Apr 1 is 90 days, 45 of them active
	if math.Abs(events[0].Amount-5000) > 0.01 {
		t.Errorf("stub = %.2f, want 5000", events[0].Amount)
	}
	if !events[1].Date.Equal(date(2025, time.April, 1)) {
		t.Errorf("first full billing at %v, want 2025-04-01", events[1].Date)
	}
}

func TestExpandLeaseCPILinkage(t *testing.T) {
	anchor := date(2025, time.January, 1)
	lease := Lease{
		ID: "ls3", EntityID: "e1", TenantName: "Gamma", Property: "Office",
		NetAmount: 10000, Frequency: FreqMonthly, PaymentDay: 1,
		LinkageIndexBase: 100,
		StartDate:        date(2025, time.January, 1),
		EndDate:          date(2025, time.June, 30),
	}

	events := expandLeases([]Lease{lease}, anchor, 730, 110)
	if len(events) == 0 {
		t.Fatal("expected events")
	}
	for _, ev := range events {
		if math.Abs(ev.Amount-11000) > 0.0001 {
			t.Fatalf("amount = %.4f, want CPI-adjusted 11000", ev.Amount)
		}
	}
}

func TestExpandLeaseOutsideWindow(t *testing.T) {
	anchor := date(2025, time.January, 1)
	lease := Lease{
		ID: "ls4", EntityID: "e1", NetAmount: 10000, Frequency: FreqMonthly, PaymentDay: 1,
		StartDate: date(2020, time.January, 1),
		EndDate:   date(2024, time.December, 31),
	}
	events := expandLeases([]Lease{lease}, anchor, 365, 100)
	if len(events) != 0 {
		t.Fatalf("expired lease should produce no events, got %d", len(events))
	}
}
