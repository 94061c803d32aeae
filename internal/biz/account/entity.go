package account

import (
	"errors"
	"time"
)

var (
	// ErrNotFound 账户不存在
	ErrNotFound = errors.New("account not found")
	// ErrInsufficientCredits 余额不足
	ErrInsufficientCredits = errors.New("insufficient credits")
)

// Account 计费主体。认证/计费网关是外部协作方，这里只保留信用结算需要
// 的字段。
type Account struct {
	ID        uint64
	CreatedAt time.Time
	UpdatedAt time.Time

	Name  string
	Email string

	Credits          int64
	TotalValidations int64

	PlanName         string
	PlanCreditsLimit int64

	patch AccountPatch
}

func (a *Account) ClearPatch() *Account {
	a.patch = AccountPatch{}
	return a
}

func (a *Account) ExportPatch() *AccountPatch { return &a.patch }

// Debit subtracts credits floored at zero and returns the amount actually
// taken.
func (a *Account) Debit(n int64) int64 {
	if n <= 0 {
		return 0
	}
	debited := n
	if debited > a.Credits {
		debited = a.Credits
	}
	a.Credits -= debited
	a.patch.WithCredits(a.Credits)
	return debited
}

// AddValidations 累加生涯验证次数
func (a *Account) AddValidations(n int64) {
	a.TotalValidations += n
	a.patch.WithTotalValidations(a.TotalValidations)
}

// LowOnCredits 余额低于套餐额度的20%且尚未归零
func (a *Account) LowOnCredits() bool {
	if a.PlanCreditsLimit <= 0 {
		return false
	}
	threshold := a.PlanCreditsLimit / 5
	return a.Credits <= threshold && a.Credits > 0
}

type AccountPatch struct {
	Credits          *int64
	TotalValidations *int64
}

func NewAccountPatch() *AccountPatch {
	return new(AccountPatch)
}

func (p *AccountPatch) WithCredits(credits int64) *AccountPatch {
	p.Credits = &credits
	return p
}

func (p *AccountPatch) WithTotalValidations(n int64) *AccountPatch {
	p.TotalValidations = &n
	return p
}
