// Package monitor is the ingestion-classification-dedup-routing pipeline:
// a single-worker poll loop that fetches newly created creator profiles,
// skips already-seen and blacklisted ones, classifies the rest, and routes
// alerts to the general and high notification tiers.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/leufoulens/zora-trenches/monitor/memberstore"
	"github.com/leufoulens/zora-trenches/zora"
)

// Feed is the ingestion source: one query returning the newest page of
// creator records.
type Feed interface {
	NewCreators(ctx context.Context) ([]zora.Creator, error)
}

// Engine drives the pipeline. Cycles never overlap; per-record processing
// within a cycle is sequential with a fixed inter-record delay.
//
// All collaborators are injected at construction and never reached through
// globals. Members is expected to be fail-open (see memberstore.Resilient):
// the engine does not branch on membership errors.
type Engine struct {
	Logger     *slog.Logger
	Feed       Feed
	Members    memberstore.Store
	Classifier *Classifier
	Notifier   Notifier

	PollInterval time.Duration
	RecordDelay  time.Duration
	// when set, every processed creator's tracked handle is added to the
	// blacklist after notification, suppressing repeat creators from the
	// same identity
	AutoBlacklist bool

	// test hook; nil means real sleep
	Sleep func(ctx context.Context, d time.Duration)
}

// Run polls until ctx is canceled. A cycle failure is logged and reported
// best-effort, never fatal; the next cycle is always scheduled. On cancel
// the in-flight record finishes and a shutdown notice is sent best-effort.
func (e *Engine) Run(ctx context.Context) error {
	processed, _ := e.Members.Count(ctx, memberstore.SetProcessed)
	e.Logger.Info("starting monitor",
		"processedAddresses", processed,
		"pollInterval", e.PollInterval,
		"autoBlacklist", e.AutoBlacklist,
	)
	if err := e.Notifier.SendStatus(ctx, "Zora Trenches started!"); err != nil {
		e.Logger.Warn("failed to send startup notice", "err", err)
	}

	ticker := time.NewTicker(e.PollInterval)
	defer ticker.Stop()
	for {
		if err := e.PollOnce(ctx); err != nil && ctx.Err() == nil {
			e.Logger.Error("poll cycle failed", "err", err)
			if serr := e.Notifier.SendStatus(ctx, fmt.Sprintf("Monitoring error: %v", err)); serr != nil {
				e.Logger.Warn("failed to send error notice", "err", serr)
			}
		}
		select {
		case <-ctx.Done():
			// ctx is already canceled; give the shutdown notice its own deadline
			sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := e.Notifier.SendStatus(sctx, "Zora Trenches Monitor stopped"); err != nil {
				e.Logger.Warn("failed to send shutdown notice", "err", err)
			}
			cancel()
			e.Logger.Info("monitor stopped")
			return nil
		case <-ticker.C:
		}
	}
}

type cycleStats struct {
	newCreators int
	highValue   int
	twitter     int
	farcaster   int
}

// PollOnce runs a single poll cycle: fetch the newest batch and process each
// unseen record in arrival order. Fetch errors abort the cycle; per-record
// problems never do.
func (e *Engine) PollOnce(ctx context.Context) (err error) {
	// rule execution may touch arbitrary record data; recover like a server
	defer func() {
		if r := recover(); r != nil {
			cycleErrorCount.Inc()
			err = fmt.Errorf("poll cycle panic: %v", r)
		}
	}()
	cycleCount.Inc()

	creators, err := e.Feed.NewCreators(ctx)
	if err != nil {
		cycleErrorCount.Inc()
		return fmt.Errorf("fetching new creators: %w", err)
	}
	e.Logger.Debug("fetched creators", "count", len(creators))

	var stats cycleStats
	for i := range creators {
		if ctx.Err() != nil {
			break
		}
		e.processCreator(ctx, &creators[i], &stats)
	}

	if stats.newCreators > 0 {
		e.Logger.Info("cycle complete",
			"newCreators", stats.newCreators,
			"highValue", stats.highValue,
			"twitterProfiles", stats.twitter,
			"farcasterProfiles", stats.farcaster,
		)
	} else {
		e.Logger.Debug("no new creators")
	}
	return nil
}

func (e *Engine) processCreator(ctx context.Context, c *zora.Creator, stats *cycleStats) {
	logger := e.Logger.With("address", c.Address, "name", c.Name)
	addr := memberstore.Normalize(c.Address)

	if seen, _ := e.Members.Contains(ctx, memberstore.SetProcessed, addr); seen {
		creatorsProcessed.WithLabelValues("duplicate").Inc()
		return
	}
	stats.newCreators++

	var handle string
	if tw := c.Profile.SocialAccounts.Account(zora.PlatformTwitter); tw != nil {
		handle = memberstore.Normalize(tw.Username)
	}
	if handle != "" {
		if banned, _ := e.Members.Contains(ctx, memberstore.SetBlacklist, handle); banned {
			logger.Info("skipping blacklisted creator", "handle", handle)
			e.Members.Add(ctx, memberstore.SetProcessed, addr)
			creatorsProcessed.WithLabelValues("blacklisted").Inc()
			return
		}
		stats.twitter++
	}
	if fc := c.Profile.SocialAccounts.Account(zora.PlatformFarcaster); fc != nil && fc.Username != "" {
		stats.farcaster++
	}

	if err := e.Notifier.SendGeneral(ctx, c); err != nil {
		logger.Error("general notification failed", "err", err)
		notificationErrorCount.WithLabelValues("general").Inc()
	}

	alpha, note := e.checkAlpha(ctx, c.Profile.Username)
	verdict := e.Classifier.Classify(ctx, c)
	reason := verdict.Reason
	if alpha || verdict.High {
		stats.highValue++
		signal := "classifier"
		if alpha {
			// alpha membership beats any computed metric
			reason = "ALPHA USER"
			signal = "alpha"
		}
		highValueCount.WithLabelValues(signal).Inc()
		logger.Info("high value creator", "reason", reason)
		if err := e.Notifier.SendHigh(ctx, c, reason, note); err != nil {
			logger.Error("high notification failed", "err", err)
			notificationErrorCount.WithLabelValues("high").Inc()
		}
	}

	// processed regardless of notification outcome: a duplicate alert is
	// worse than a missed one
	e.Members.Add(ctx, memberstore.SetProcessed, addr)
	creatorsProcessed.WithLabelValues("new").Inc()

	if e.AutoBlacklist && handle != "" {
		if added, _ := e.Members.Add(ctx, memberstore.SetBlacklist, handle); added > 0 {
			logger.Info("auto-blacklisted handle", "handle", handle)
		}
	}

	logger.Info("processed new creator", "reason", reason, "maxFollowers", verdict.MaxFollowers)
	e.sleep(ctx, e.RecordDelay)
}

func (e *Engine) checkAlpha(ctx context.Context, username string) (bool, string) {
	if username == "" {
		return false, ""
	}
	u := memberstore.Normalize(username)
	ok, _ := e.Members.Contains(ctx, memberstore.SetAlpha, u)
	if !ok {
		return false, ""
	}
	note, _ := e.Members.Note(ctx, memberstore.SetAlpha, u)
	return true, note
}

func (e *Engine) sleep(ctx context.Context, d time.Duration) {
	if e.Sleep != nil {
		e.Sleep(ctx, d)
		return
	}
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
