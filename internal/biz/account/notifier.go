package account

import (
	"context"

	"go.uber.org/zap"
)

// Notifier 完成/低余额通知的出口。邮件投递是外部协作方，默认实现只记
// 日志，部署方可替换。
type Notifier interface {
	JobCompleted(ctx context.Context, acct *Account, totalEmails int, downloadURL string) error
	LowCredits(ctx context.Context, acct *Account) error
}

type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) JobCompleted(ctx context.Context, acct *Account, totalEmails int, downloadURL string) error {
	n.logger.Info("job completion notification",
		zap.Uint64("account_id", acct.ID),
		zap.String("email", acct.Email),
		zap.Int("total_emails", totalEmails),
		zap.String("download_url", downloadURL))
	return nil
}

func (n *LogNotifier) LowCredits(ctx context.Context, acct *Account) error {
	n.logger.Warn("low credits notification",
		zap.Uint64("account_id", acct.ID),
		zap.String("email", acct.Email),
		zap.Int64("credits", acct.Credits))
	return nil
}
