package pubsub

import "testing"

const topicTest Topic = "test"

func TestPublish1DeliversToAllSubscribers(t *testing.T) {
	b := New()
	var got []int
	b.Subscribe1(topicTest, func(a any) { got = append(got, a.(int)) })
	b.Subscribe1(topicTest, func(a any) { got = append(got, a.(int)*10) })
	b.Publish1(topicTest, 3)
	if len(got) != 2 {
		t.Fatalf("got %v, want 2 deliveries", got)
	}
}

func TestRepeatedIdenticalSubscribeRegistersEachCall(t *testing.T) {
	b := New()
	n := 0
	fn := func(a any) { n++ }
	b.Subscribe1(topicTest, fn)
	b.Subscribe1(topicTest, fn)
	b.Publish1(topicTest, nil)
	if n != 2 {
		t.Fatalf("two identical Subscribe1 calls: got %d deliveries, want 2 (each subscription is independent)", n)
	}
}

func TestUnsubscribeOfNonSubscriberIsNoop(t *testing.T) {
	b := New()
	sub := b.Subscribe1(topicTest, func(a any) {})
	b.Unsubscribe(sub)
	// Unsubscribing again must not panic or alter state.
	b.Unsubscribe(sub)
	b.Publish1(topicTest, nil) // should not call the removed subscriber
}

func TestUnsubscribeDuringPublishIsSafe(t *testing.T) {
	b := New()
	calls := 0
	var sub2 Subscription
	sub1 := b.Subscribe1(topicTest, func(a any) {
		calls++
		b.Unsubscribe(sub2)
	})
	sub2 = b.Subscribe1(topicTest, func(a any) {
		calls++
	})
	_ = sub1
	b.Publish1(topicTest, nil)
	if calls != 2 {
		t.Fatalf("first publish: got %d calls, want 2 (unsubscribe takes effect next publish)", calls)
	}
	b.Publish1(topicTest, nil)
	if calls != 3 {
		t.Fatalf("second publish after reentrant unsubscribe: got %d calls, want 3", calls)
	}
}

func TestPublish2DeliversBothArguments(t *testing.T) {
	b := New()
	var sumA, sumB int
	b.Subscribe2(topicTest, func(a, c any) {
		sumA += a.(int)
		sumB += c.(int)
	})
	b.Publish2(topicTest, 2, 5)
	if sumA != 2 || sumB != 5 {
		t.Fatalf("got sumA=%d sumB=%d, want 2 5", sumA, sumB)
	}
}
