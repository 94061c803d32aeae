package account

import (
	"context"
	"time"

	"github.com/google/wire"
	"go.uber.org/zap"
)

var Provider = wire.NewSet(
	NewUsecase,
	NewLogNotifier,
	wire.Bind(new(Notifier), new(*LogNotifier)),
)

type Usecase struct {
	repo     Repo
	usage    UsageRepo
	notifier Notifier
	logger   *zap.Logger
}

func NewUsecase(repo Repo, usage UsageRepo, notifier Notifier, logger *zap.Logger) *Usecase {
	return &Usecase{repo: repo, usage: usage, notifier: notifier, logger: logger}
}

func (u *Usecase) Get(ctx context.Context, id uint64) (*Account, error) {
	acct, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, ErrNotFound
	}
	return acct, nil
}

// ChargeSingle 单邮箱校验前扣1点。余额不足直接拒绝。
func (u *Usecase) ChargeSingle(ctx context.Context, id uint64) (*Account, error) {
	var charged *Account
	err := u.repo.Execute(ctx, func(ctx context.Context) error {
		acct, err := u.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if acct == nil {
			return ErrNotFound
		}
		if acct.Credits < 1 {
			return ErrInsufficientCredits
		}
		acct.Debit(1)
		acct.AddValidations(1)
		charged = acct
		return u.repo.Update(ctx, id, acct.ExportPatch())
	})
	if err != nil {
		return nil, err
	}
	return charged, nil
}

// SettleBulk 批量作业终态结算：按总量扣费（扣到0为止）并累加生涯次数。
func (u *Usecase) SettleBulk(ctx context.Context, id uint64, totalEmails int) (*Account, error) {
	var settled *Account
	err := u.repo.Execute(ctx, func(ctx context.Context) error {
		acct, err := u.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if acct == nil {
			return ErrNotFound
		}
		acct.Debit(int64(totalEmails))
		acct.AddValidations(int64(totalEmails))
		settled = acct
		return u.repo.Update(ctx, id, acct.ExportPatch())
	})
	if err != nil {
		return nil, err
	}
	return settled, nil
}

// RecordUsage 累加当日用量。失败只记日志，不影响主流程。
func (u *Usecase) RecordUsage(ctx context.Context, ownerID uint64, kind UsageKind, validations int, creditsUsed int64) {
	if err := u.usage.IncrementDaily(ctx, ownerID, Day(time.Now()), kind, validations, creditsUsed); err != nil {
		u.logger.Error("failed to record usage",
			zap.Uint64("account_id", ownerID),
			zap.String("kind", string(kind)),
			zap.Error(err))
	}
}

// CheckLowCredits 余额偏低时发提醒。失败只记日志。
func (u *Usecase) CheckLowCredits(ctx context.Context, acct *Account) {
	if acct == nil || !acct.LowOnCredits() {
		return
	}
	if err := u.notifier.LowCredits(ctx, acct); err != nil {
		u.logger.Error("failed to send low credits notification",
			zap.Uint64("account_id", acct.ID),
			zap.Error(err))
	}
}

// NotifyJobCompleted 终态通知。失败只记日志。
func (u *Usecase) NotifyJobCompleted(ctx context.Context, acct *Account, totalEmails int, downloadURL string) {
	if err := u.notifier.JobCompleted(ctx, acct, totalEmails, downloadURL); err != nil {
		u.logger.Error("failed to send job completion notification",
			zap.Uint64("account_id", acct.ID),
			zap.Error(err))
	}
}
