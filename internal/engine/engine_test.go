package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/ledgervox/internal/common"
	"github.com/Veraticus/ledgervox/internal/model"
	"github.com/Veraticus/ledgervox/internal/nlu"
	"github.com/Veraticus/ledgervox/internal/service"
	"github.com/Veraticus/ledgervox/internal/storage"
)

func fastRetry() Config {
	return Config{
		RetryOpts: service.RetryOptions{
			MaxAttempts:  2,
			InitialDelay: time.Millisecond,
			MaxDelay:     5 * time.Millisecond,
			Multiplier:   2.0,
		},
	}
}

func newTestEngine(t *testing.T) (*Engine, *storage.SQLiteStorage) {
	t.Helper()
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	eng := NewWithConfig(store,
		nlu.NewClassifier(nil, nil),
		nlu.NewExtractor(nil, nil),
		nlu.NewResolver(nil, nil),
		nlu.NewAnswerer(nil, nil),
		fastRetry(),
	)
	return eng, store
}

func TestProcessAddExpense(t *testing.T) {
	eng, store := newTestEngine(t)
	ctx := context.Background()

	reply := eng.Process(ctx, "u1", "I spent $50 on Starbucks")
	require.True(t, reply.Success)
	assert.Equal(t, model.IntentAddExpense, reply.Intent)
	assert.Equal(t, "Added $50 to Food & Dining.", reply.Message)
	require.NotNil(t, reply.Expense)
	assert.Equal(t, 50.0, reply.Expense.Amount)
	assert.Equal(t, model.CategoryFood, reply.Expense.Category)
	assert.Equal(t, "Starbucks", reply.Expense.Merchant)
	assert.Equal(t, "I spent $50 on Starbucks", reply.Expense.Description)
	assert.NotEmpty(t, reply.Expense.ID)

	stored, err := store.GetExpenses(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, reply.Expense.ID, stored[0].ID)
}

func TestProcessAddWithoutAmount(t *testing.T) {
	eng, store := newTestEngine(t)
	ctx := context.Background()

	reply := eng.Process(ctx, "u1", "I spent money on coffee")
	assert.False(t, reply.Success)
	assert.Equal(t, "I couldn't catch the amount. How much did you spend?", reply.Message)
	assert.Nil(t, reply.Expense)

	// Nothing was persisted.
	stored, err := store.GetExpenses(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestProcessDeleteLast(t *testing.T) {
	eng, store := newTestEngine(t)
	ctx := context.Background()

	eng.Process(ctx, "u1", "I spent $10 on coffee")
	eng.Process(ctx, "u1", "I spent $25 on gas")

	reply := eng.Process(ctx, "u1", "delete my last expense")
	require.True(t, reply.Success)
	assert.Equal(t, model.IntentDeleteExpense, reply.Intent)
	assert.Contains(t, reply.Message, "Deleted your last expense")

	stored, err := store.GetExpenses(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, 10.0, stored[0].Amount)
}

func TestProcessDeleteWithNothingStored(t *testing.T) {
	eng, _ := newTestEngine(t)

	reply := eng.Process(context.Background(), "u1", "delete my last expense")
	assert.False(t, reply.Success)
	assert.Equal(t, "You don't have any expenses to delete!", reply.Message)
}

func TestProcessBulkDelete(t *testing.T) {
	eng, store := newTestEngine(t)
	ctx := context.Background()

	eng.Process(ctx, "u1", "I spent $20 on coffee")
	eng.Process(ctx, "u1", "I spent $20 on parking")
	eng.Process(ctx, "u1", "I spent $35 on dinner")

	reply := eng.Process(ctx, "u1", "delete all my $20 expenses")
	require.True(t, reply.Success)
	assert.Equal(t, "Deleted all 2 expense(s) of $20.00.", reply.Message)

	stored, err := store.GetExpenses(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, 35.0, stored[0].Amount)
}

func TestProcessQuery(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	reply := eng.Process(ctx, "u1", "how much have I spent?")
	require.True(t, reply.Success)
	assert.Equal(t, model.IntentQuery, reply.Intent)
	assert.Equal(t, "You haven't logged any expenses yet! Start by saying 'I spent $X on something'.", reply.Message)

	eng.Process(ctx, "u1", "I spent $40 on groceries")
	reply = eng.Process(ctx, "u1", "what's my total?")
	require.True(t, reply.Success)
	assert.Equal(t, "Your total spending is $40.00 across 1 expenses.", reply.Message)
}

func TestProcessHelpAndUnknown(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	help := eng.Process(ctx, "u1", "help")
	assert.True(t, help.Success)
	assert.Equal(t, model.IntentHelp, help.Intent)
	assert.Contains(t, help.Message, "I can log expenses")

	unknown := eng.Process(ctx, "u1", "nice weather today")
	assert.False(t, unknown.Success)
	assert.Equal(t, model.IntentUnknown, unknown.Intent)
	assert.Contains(t, unknown.Message, "I'm not sure what you meant")
}

func TestProcessRecordsChatHistory(t *testing.T) {
	eng, store := newTestEngine(t)
	ctx := context.Background()

	eng.Process(ctx, "u1", "I spent $15 on lunch")

	messages, err := store.GetChatMessages(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, messages, 2)

	assert.Equal(t, model.RoleUser, messages[0].Role)
	assert.Equal(t, "I spent $15 on lunch", messages[0].Content)
	assert.Equal(t, model.RoleAI, messages[1].Role)
	assert.Equal(t, "Added $15 to Food & Dining.", messages[1].Content)
	require.NotNil(t, messages[1].Expense)
	assert.Equal(t, 15.0, messages[1].Expense.Amount)
}

func TestProcessAsForcesIntent(t *testing.T) {
	eng, _ := newTestEngine(t)

	// Classified alone this would be a query; the forced intent runs the
	// extractor instead.
	reply := eng.ProcessAs(context.Background(), "u1", "how much did I spend", model.IntentAddExpense)
	assert.False(t, reply.Success)
	assert.Equal(t, model.IntentAddExpense, reply.Intent)
	assert.Equal(t, "I couldn't catch the amount. How much did you spend?", reply.Message)
}

// failingStorage fails every expense operation a fixed number of times, or
// forever when failures is negative.
type failingStorage struct {
	service.Storage
	failures int
	calls    int
}

func (f *failingStorage) SaveExpense(ctx context.Context, userID string, expense *model.Expense) error {
	f.calls++
	if f.failures < 0 || f.calls <= f.failures {
		return errors.New("disk on fire")
	}
	return f.Storage.SaveExpense(ctx, userID, expense)
}

func TestProcessAddRetriesTransientStorageFailure(t *testing.T) {
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	flaky := &failingStorage{Storage: store, failures: 1}
	eng := NewWithConfig(flaky,
		nlu.NewClassifier(nil, nil),
		nlu.NewExtractor(nil, nil),
		nlu.NewResolver(nil, nil),
		nlu.NewAnswerer(nil, nil),
		fastRetry(),
	)

	reply := eng.Process(context.Background(), "u1", "I spent $9 on snacks")
	require.True(t, reply.Success)
	assert.Equal(t, 2, flaky.calls)
}

func TestProcessAddStorageFailureApologizes(t *testing.T) {
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	broken := &failingStorage{Storage: store, failures: -1}
	eng := NewWithConfig(broken,
		nlu.NewClassifier(nil, nil),
		nlu.NewExtractor(nil, nil),
		nlu.NewResolver(nil, nil),
		nlu.NewAnswerer(nil, nil),
		fastRetry(),
	)

	reply := eng.Process(context.Background(), "u1", "I spent $9 on snacks")
	assert.False(t, reply.Success)
	assert.Equal(t, "Sorry, I had trouble saving that. Mind trying again?", reply.Message)
	assert.Nil(t, reply.Expense)
}

func TestProcessAddMarkedNonRetryableFailsFast(t *testing.T) {
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	fatal := &nonRetryableStorage{Storage: store}
	eng := NewWithConfig(fatal,
		nlu.NewClassifier(nil, nil),
		nlu.NewExtractor(nil, nil),
		nlu.NewResolver(nil, nil),
		nlu.NewAnswerer(nil, nil),
		fastRetry(),
	)

	reply := eng.Process(context.Background(), "u1", "I spent $9 on snacks")
	assert.False(t, reply.Success)
	assert.Equal(t, 1, fatal.calls)
}

type nonRetryableStorage struct {
	service.Storage
	calls int
}

func (f *nonRetryableStorage) SaveExpense(context.Context, string, *model.Expense) error {
	f.calls++
	return &common.RetryableError{Err: errors.New("constraint violation"), Retryable: false}
}
