package jobs

import (
	"context"
	"time"

	"github.com/monterra-as/installer-api/internal/domain"
	"go.uber.org/zap"
)

// ExpirySweepJobName is the name of the expiry sweep job
const ExpirySweepJobName = "expiry_sweep"

// linkExpiryWarningWindow is how far ahead the sweep looks for signature
// links about to expire.
const linkExpiryWarningWindow = 24 * time.Hour

// QuoteExpirer marks published quotes past their deadline as expired.
// The interface keeps the job from importing the repository package directly.
type QuoteExpirer interface {
	ExpirePublishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ContractLinkLister lists contracts whose signature links expire before a
// cutoff.
type ContractLinkLister interface {
	ListLinksExpiringBefore(ctx context.Context, cutoff time.Time) ([]domain.Contract, error)
}

// ExpirySweepJob flips overdue published quotes to expired and logs contract
// signature links that are about to lapse.
type ExpirySweepJob struct {
	quotes    QuoteExpirer
	contracts ContractLinkLister
	logger    *zap.Logger
	timeout   time.Duration
}

// NewExpirySweepJob creates a new expiry sweep job.
// The timeout controls how long a single sweep is allowed to run.
func NewExpirySweepJob(quotes QuoteExpirer, contracts ContractLinkLister, logger *zap.Logger, timeout time.Duration) *ExpirySweepJob {
	return &ExpirySweepJob{
		quotes:    quotes,
		contracts: contracts,
		logger:    logger,
		timeout:   timeout,
	}
}

// Run executes one sweep. This is called by the scheduler according to the
// cron expression.
func (j *ExpirySweepJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	now := start.UTC()

	expired, err := j.quotes.ExpirePublishedBefore(ctx, now)
	if err != nil {
		j.logger.Error("quote expiry sweep failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		// Still check contract links even when the quote sweep fails
	}

	var expiringLinks int
	if j.contracts != nil {
		contracts, err := j.contracts.ListLinksExpiringBefore(ctx, now.Add(linkExpiryWarningWindow))
		if err != nil {
			j.logger.Error("contract link expiry check failed",
				zap.Error(err),
				zap.Duration("duration", time.Since(start)))
		} else {
			expiringLinks = len(contracts)
			for _, contract := range contracts {
				j.logger.Warn("contract signature link expiring soon",
					zap.String("contractID", contract.ID.String()),
					zap.String("contractNumber", contract.ContractNumber),
					zap.Timep("expiresAt", contract.ExpiresAt))
			}
		}
	}

	j.logger.Info("expiry sweep completed",
		zap.Int64("quotes_expired", expired),
		zap.Int("links_expiring_soon", expiringLinks),
		zap.Duration("duration", time.Since(start)))
}

// RegisterExpirySweepJob registers the expiry sweep with the scheduler.
// The cronExpr should be a valid cron expression (e.g., "0 */10 * * * *" for
// every 10 minutes).
func RegisterExpirySweepJob(scheduler *Scheduler, quotes QuoteExpirer, contracts ContractLinkLister, logger *zap.Logger, cronExpr string, timeout time.Duration) error {
	job := NewExpirySweepJob(quotes, contracts, logger, timeout)
	return scheduler.AddJob(ExpirySweepJobName, cronExpr, job.Run)
}
