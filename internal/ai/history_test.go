package ai

import (
	"reflect"
	"testing"

	"example.com/chat-relay/internal/models"
)

const testPreamble = "be helpful"

// TestBuildOutbound проверяет порядок: преамбула, история, новое сообщение.
func TestBuildOutbound(t *testing.T) {
	prior := []Message{
		{Role: models.RoleUser, Content: "hi"},
		{Role: models.RoleAssistant, Content: "hello"},
	}

	got := BuildOutbound(testPreamble, prior, "how are you")
	want := []Message{
		{Role: models.RoleSystem, Content: testPreamble},
		{Role: models.RoleUser, Content: "hi"},
		{Role: models.RoleAssistant, Content: "hello"},
		{Role: models.RoleUser, Content: "how are you"},
	}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

// TestBuildReturned проверяет, что история = H ++ [user] ++ [assistant] без преамбулы.
func TestBuildReturned(t *testing.T) {
	prior := []Message{
		{Role: models.RoleUser, Content: "a"},
		{Role: models.RoleAssistant, Content: "b"},
	}

	got := BuildReturned(testPreamble, prior, "c", "d")
	want := []Message{
		{Role: models.RoleUser, Content: "a"},
		{Role: models.RoleAssistant, Content: "b"},
		{Role: models.RoleUser, Content: "c"},
		{Role: models.RoleAssistant, Content: "d"},
	}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

// TestPreambleNeverAccumulates проверяет, что преамбула не копится от хода к ходу.
func TestPreambleNeverAccumulates(t *testing.T) {
	var history []Message
	for i := 0; i < 5; i++ {
		outbound := BuildOutbound(testPreamble, history, "turn")
		systems := 0
		for _, message := range outbound {
			if message.Role == models.RoleSystem {
				systems++
			}
		}
		if systems != 1 {
			t.Fatalf("turn %d: expected one system message, got %d", i, systems)
		}

		history = BuildReturned(testPreamble, history, "turn", "reply")
		for _, message := range history {
			if message.Content == testPreamble {
				t.Fatalf("turn %d: preamble leaked into history", i)
			}
		}
	}

	if len(history) != 10 {
		t.Fatalf("expected 10 history entries, got %d", len(history))
	}
}

// TestBuildReturnedDropsEchoedPreamble проверяет удаление присланной клиентом преамбулы.
func TestBuildReturnedDropsEchoedPreamble(t *testing.T) {
	prior := []Message{{Role: models.RoleSystem, Content: testPreamble}}

	got := BuildReturned(testPreamble, prior, "q", "a")
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %v", got)
	}
}
