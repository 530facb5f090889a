package historylog

import "testing"

func TestAppendDriverDedupsAtMostOncePerLeaveTime(t *testing.T) {
	log := New()
	e := DriverEvent{DriverID: "d1", LocationID: "R1", ArriveTime: 0, LeaveTime: 10}

	if ok := log.AppendDriver(e); !ok {
		t.Fatal("want first append to succeed")
	}
	if ok := log.AppendDriver(e); ok {
		t.Fatal("want duplicate (driver, leave_time) append to be rejected")
	}

	e2 := e
	e2.LeaveTime = 20
	if ok := log.AppendDriver(e2); !ok {
		t.Fatal("want a distinct leave_time to append successfully")
	}

	if got := len(log.DriverEvents()); got != 2 {
		t.Fatalf("want 2 recorded driver events, got %d", got)
	}
}

func TestAppendOrderDedupsAtMostOncePerUpdateTime(t *testing.T) {
	log := New()
	e := OrderEvent{OrderID: "o1", State: 2, UpdateTime: 100, CommittedCompletionTime: 900}

	if ok := log.AppendOrder(e); !ok {
		t.Fatal("want first append to succeed")
	}
	if ok := log.AppendOrder(e); ok {
		t.Fatal("want duplicate (order, update_time) append to be rejected")
	}

	events := log.OrderEvents()
	if len(events) != 1 {
		t.Fatalf("want 1 recorded order event, got %d", len(events))
	}
	if events[0].CommittedCompletionTime != 900 {
		t.Fatalf("want committed_completion_time carried through, got %d", events[0].CommittedCompletionTime)
	}
}

func TestEventsReturnsIndependentCopy(t *testing.T) {
	log := New()
	log.AppendDriver(DriverEvent{DriverID: "d1", LeaveTime: 5})

	events := log.DriverEvents()
	events[0].DriverID = "mutated"

	if got := log.DriverEvents(); got[0].DriverID != "d1" {
		t.Fatalf("want internal state unaffected by caller mutation, got %q", got[0].DriverID)
	}
}
