package transport

import (
	"encoding/json"
	"testing"
)

func TestRegistry_DispatchPreservesArrivalOrder(t *testing.T) {
	ch := NewMemoryChannel()

	var got []string
	ch.Subscribe("state", func(data json.RawMessage) {
		got = append(got, string(data))
	})

	for _, payload := range []string{"a", "b", "c"} {
		if err := ch.Deliver("state", payload); err != nil {
			t.Fatal(err)
		}
	}

	want := []string{`"a"`, `"b"`, `"c"`}
	if len(got) != len(want) {
		t.Fatalf("want %d deliveries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("delivery %d: want %s, got %s", i, want[i], got[i])
		}
	}
}

func TestRegistry_UnsubscribeStopsDelivery(t *testing.T) {
	ch := NewMemoryChannel()

	calls := 0
	unsub := ch.Subscribe("state", func(json.RawMessage) { calls++ })

	if err := ch.Deliver("state", 1); err != nil {
		t.Fatal(err)
	}
	unsub()
	if err := ch.Deliver("state", 2); err != nil {
		t.Fatal(err)
	}

	if calls != 1 {
		t.Fatalf("want one delivery before unsubscribe, got %d", calls)
	}
}

func TestRegistry_TopicsAreIsolated(t *testing.T) {
	ch := NewMemoryChannel()

	stateCalls, pingCalls := 0, 0
	ch.Subscribe("state", func(json.RawMessage) { stateCalls++ })
	ch.Subscribe("ping", func(json.RawMessage) { pingCalls++ })

	if err := ch.Deliver("ping", "id-1"); err != nil {
		t.Fatal(err)
	}

	if stateCalls != 0 || pingCalls != 1 {
		t.Fatalf("cross-topic delivery: state=%d ping=%d", stateCalls, pingCalls)
	}
}

func TestStatusHandlers_SeeTransitions(t *testing.T) {
	ch := NewMemoryChannel()

	var got []Status
	unsub := ch.NotifyStatus(func(s Status) { got = append(got, s) })

	ch.EmitStatus(Status{Connected: true})
	ch.EmitStatus(Status{Connected: false, Reason: "gone"})
	unsub()
	ch.EmitStatus(Status{Connected: true})

	if len(got) != 2 {
		t.Fatalf("want two observed transitions, got %d", len(got))
	}
	if got[1].Reason != "gone" {
		t.Fatalf("want disconnect reason carried, got %+v", got[1])
	}
}

func TestMemoryChannel_SendRecordsAndCloseStopsSends(t *testing.T) {
	ch := NewMemoryChannel()

	if err := ch.Send("init", map[string]string{"roomId": "r1"}); err != nil {
		t.Fatal(err)
	}
	if sent := ch.SentOn("init"); len(sent) != 1 {
		t.Fatalf("want one recorded send, got %d", len(sent))
	}

	if err := ch.Close(); err != nil {
		t.Fatal(err)
	}
	if err := ch.Send("init", nil); err == nil {
		t.Fatal("send after close must fail")
	}
}
