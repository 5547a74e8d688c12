package telegram

import (
	"context"
	"testing"

	"centesimi/internal/core"
)

// step runs one message through the free-text handler and asserts the reply.
func step(t *testing.T, b *Bot, chatID int64, text, want string) {
	t.Helper()
	reply, err := b.cmdFreeText(context.Background(), chatID, text)
	if err != nil {
		t.Fatalf("cmdFreeText(%q) error = %v", text, err)
	}
	if reply != want {
		t.Errorf("cmdFreeText(%q) reply = %q, want %q", text, reply, want)
	}
}

func TestDialogNewCategory(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBot(t)
	mustCategory(t, b, 100, "food", "Food and drink")

	reply, err := b.cmdNewCategory(ctx, 100, "/nc")
	if err != nil {
		t.Fatalf("cmdNewCategory() error = %v", err)
	}
	if reply != "Which alias should the new category have?" {
		t.Errorf("cmdNewCategory() reply = %q", reply)
	}

	// Bad answers keep the question open.
	step(t, b, 100, "two words", "Aliases are a single word of at most 64 characters. Try another.")
	step(t, b, 100, "FOOD", `Alias "food" is already taken by Food and drink. Try another.`)

	step(t, b, 100, "fun", `Now send the full name for "fun".`)
	step(t, b, 100, "Fun money", "Category saved: fun (Fun money)")

	// The dialogue is over; free text records again.
	step(t, b, 100, "fun 5", "Added 5.00 to fun.")
}

func TestDialogRenameCategory(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBot(t)
	mustCategory(t, b, 100, "food", "Food")

	reply, err := b.cmdUpdateCategory(ctx, 100, "/uc")
	if err != nil {
		t.Fatalf("cmdUpdateCategory() error = %v", err)
	}
	if reply != "Categories:\nfood (Food)\n\nWhich one should be renamed?" {
		t.Errorf("cmdUpdateCategory() reply = %q", reply)
	}

	step(t, b, 100, "rent", "Categories:\nfood (Food)\n\nPick an alias from the list.")
	step(t, b, 100, "food", `What is the new name for "food"?`)
	step(t, b, 100, "Groceries and snacks", "Category updated: food (Groceries and snacks)")

	// Naming the alias with the command skips the first question.
	reply, err = b.cmdUpdateCategory(ctx, 100, "/uc food")
	if err != nil {
		t.Fatalf("cmdUpdateCategory() alias-only error = %v", err)
	}
	if reply != `What is the new name for "food"?` {
		t.Errorf("cmdUpdateCategory() alias-only reply = %q", reply)
	}
	step(t, b, 100, "Street food", "Category updated: food (Street food)")
}

func TestDialogCostCompletion(t *testing.T) {
	ctx := context.Background()

	t.Run("amount first", func(t *testing.T) {
		b, _ := newTestBot(t)
		mustCategory(t, b, 100, "food", "Food")

		step(t, b, 100, "12.50", "Which category should take 12.50?")
		step(t, b, 100, "rent", "Categories:\nfood (Food)\n\nPick an alias from the list.")
		step(t, b, 100, "food", "Added 12.50 to food.")

		entries, err := b.ledger.List(ctx, 100, core.EntryFilter{})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(entries) != 1 || entries[0].AmountCents != 1250 {
			t.Fatalf("entries = %+v, want one of 1250 cents", entries)
		}
		if entries[0].OccurredAt != b.now().Unix() {
			t.Errorf("occurred_at = %d, want the bot clock %d", entries[0].OccurredAt, b.now().Unix())
		}
	})

	t.Run("alias first", func(t *testing.T) {
		b, _ := newTestBot(t)
		mustCategory(t, b, 100, "food", "Food")

		step(t, b, 100, "food", "How much went to food?")
		step(t, b, 100, "soon", "Amounts look like 12.50 (no sign, at most two decimals).")
		step(t, b, 100, "7", "Added 7.00 to food.")
	})
}

func TestDialogSurvivesOtherCommands(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBot(t)
	mustCategory(t, b, 100, "food", "Food")

	step(t, b, 100, "12.50", "Which category should take 12.50?")

	// A quick look at the list does not abandon the pending question.
	if _, err := b.cmdListCategories(ctx, 100, "/lc"); err != nil {
		t.Fatalf("cmdListCategories() error = %v", err)
	}
	step(t, b, 100, "food", "Added 12.50 to food.")
}

func TestDialogPerConversation(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBot(t)
	mustCategory(t, b, 100, "food", "Food")
	mustCategory(t, b, 200, "food", "Food")

	step(t, b, 100, "12.50", "Which category should take 12.50?")

	// Another chat records directly; its message is no answer to chat 100.
	step(t, b, 200, "food 3", "Added 3.00 to food.")
	step(t, b, 100, "food", "Added 12.50 to food.")

	for chatID, wantCents := range map[int64]int64{100: 1250, 200: 300} {
		entries, err := b.ledger.List(ctx, chatID, core.EntryFilter{})
		if err != nil {
			t.Fatalf("List(%d) error = %v", chatID, err)
		}
		if len(entries) != 1 || entries[0].AmountCents != wantCents {
			t.Errorf("chat %d entries = %+v, want one of %d cents", chatID, entries, wantCents)
		}
	}
}
