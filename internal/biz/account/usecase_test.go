package account

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memRepo struct {
	accounts map[uint64]*Account
	updates  int
}

func newMemRepo(accounts ...*Account) *memRepo {
	r := &memRepo{accounts: make(map[uint64]*Account)}
	for _, a := range accounts {
		r.accounts[a.ID] = a
	}
	return r
}

func (r *memRepo) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (r *memRepo) GetByID(ctx context.Context, id uint64) (*Account, error) {
	return r.accounts[id], nil
}

func (r *memRepo) Create(ctx context.Context, a *Account) error {
	r.accounts[a.ID] = a
	return nil
}

func (r *memRepo) Update(ctx context.Context, id uint64, patch *AccountPatch) error {
	r.updates++
	return nil
}

type memUsage struct {
	kinds []UsageKind
	fail  bool
}

func (r *memUsage) IncrementDaily(ctx context.Context, ownerID uint64, day time.Time, kind UsageKind, validations int, creditsUsed int64) error {
	if r.fail {
		return context.DeadlineExceeded
	}
	r.kinds = append(r.kinds, kind)
	return nil
}

type recordingNotifier struct {
	low       int
	completed int
}

func (n *recordingNotifier) JobCompleted(ctx context.Context, acct *Account, totalEmails int, downloadURL string) error {
	n.completed++
	return nil
}

func (n *recordingNotifier) LowCredits(ctx context.Context, acct *Account) error {
	n.low++
	return nil
}

func newTestUsecase(repo *memRepo, usage *memUsage, notifier Notifier) *Usecase {
	return NewUsecase(repo, usage, notifier, zap.NewNop())
}

func TestDebitFloorsAtZero(t *testing.T) {
	a := &Account{Credits: 30}

	assert.Equal(t, int64(30), a.Debit(100)) // 只能扣到0
	assert.Equal(t, int64(0), a.Credits)
	assert.Equal(t, int64(0), a.Debit(10))
	assert.Equal(t, int64(0), a.Debit(-5))
}

func TestLowOnCredits(t *testing.T) {
	a := &Account{Credits: 200, PlanCreditsLimit: 1000}
	assert.True(t, a.LowOnCredits()) // 恰好20%

	a.Credits = 201
	assert.False(t, a.LowOnCredits())

	a.Credits = 0
	assert.False(t, a.LowOnCredits()) // 归零不再提醒

	a = &Account{Credits: 1, PlanCreditsLimit: 0}
	assert.False(t, a.LowOnCredits()) // 无套餐额度
}

func TestChargeSingle(t *testing.T) {
	repo := newMemRepo(&Account{ID: 1, Credits: 2})
	uc := newTestUsecase(repo, &memUsage{}, &recordingNotifier{})

	acct, err := uc.ChargeSingle(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), acct.Credits)
	assert.Equal(t, int64(1), acct.TotalValidations)
	assert.Equal(t, 1, repo.updates)
}

func TestChargeSingleInsufficient(t *testing.T) {
	repo := newMemRepo(&Account{ID: 1, Credits: 0})
	uc := newTestUsecase(repo, &memUsage{}, &recordingNotifier{})

	_, err := uc.ChargeSingle(context.Background(), 1)
	assert.ErrorIs(t, err, ErrInsufficientCredits)
	assert.Equal(t, 0, repo.updates)
}

func TestChargeSingleUnknownAccount(t *testing.T) {
	uc := newTestUsecase(newMemRepo(), &memUsage{}, &recordingNotifier{})

	_, err := uc.ChargeSingle(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSettleBulkDebitsFloored(t *testing.T) {
	repo := newMemRepo(&Account{ID: 1, Credits: 50})
	uc := newTestUsecase(repo, &memUsage{}, &recordingNotifier{})

	acct, err := uc.SettleBulk(context.Background(), 1, 120)
	require.NoError(t, err)
	assert.Equal(t, int64(0), acct.Credits)
	assert.Equal(t, int64(120), acct.TotalValidations)
}

func TestRecordUsageFailureIsSwallowed(t *testing.T) {
	repo := newMemRepo(&Account{ID: 1, Credits: 50})
	uc := newTestUsecase(repo, &memUsage{fail: true}, &recordingNotifier{})

	// 用量统计失败不影响主流程
	uc.RecordUsage(context.Background(), 1, UsageBulk, 10, 10)
}

func TestCheckLowCreditsNotifiesOnce(t *testing.T) {
	notifier := &recordingNotifier{}
	uc := newTestUsecase(newMemRepo(), &memUsage{}, notifier)

	uc.CheckLowCredits(context.Background(), &Account{ID: 1, Credits: 100, PlanCreditsLimit: 1000})
	assert.Equal(t, 1, notifier.low)

	uc.CheckLowCredits(context.Background(), &Account{ID: 1, Credits: 900, PlanCreditsLimit: 1000})
	assert.Equal(t, 1, notifier.low)

	uc.CheckLowCredits(context.Background(), nil)
	assert.Equal(t, 1, notifier.low)
}

func TestDay(t *testing.T) {
	ts := time.Date(2024, 5, 17, 23, 45, 1, 0, time.FixedZone("X", 3600))
	day := Day(ts)
	assert.Equal(t, time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC), day)
}
