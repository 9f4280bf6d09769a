package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leufoulens/zora-trenches/monitor/memberstore"
	"github.com/leufoulens/zora-trenches/zora"
)

type fakeFeed struct {
	creators []zora.Creator
	err      error
}

func (f *fakeFeed) NewCreators(ctx context.Context) ([]zora.Creator, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.creators, nil
}

type sentHigh struct {
	Address string
	Reason  string
	Note    string
}

type fakeNotifier struct {
	failSends bool
	general   []string
	high      []sentHigh
	status    []string
}

func (n *fakeNotifier) SendGeneral(ctx context.Context, c *zora.Creator) error {
	if n.failSends {
		return errors.New("sink unavailable")
	}
	n.general = append(n.general, c.Address)
	return nil
}

func (n *fakeNotifier) SendHigh(ctx context.Context, c *zora.Creator, reason, note string) error {
	if n.failSends {
		return errors.New("sink unavailable")
	}
	n.high = append(n.high, sentHigh{Address: c.Address, Reason: reason, Note: note})
	return nil
}

func (n *fakeNotifier) SendStatus(ctx context.Context, text string) error {
	n.status = append(n.status, text)
	return nil
}

func newTestEngine(feed Feed, notifier Notifier) (*Engine, *memberstore.MemStore) {
	members := memberstore.NewMemStore()
	return &Engine{
		Logger:  testLogger(),
		Feed:    feed,
		Members: members,
		Classifier: &Classifier{
			HighFollowers: 10_000,
			HighMarketCap: DefaultHighMarketCap,
		},
		Notifier: notifier,
		Sleep:    func(ctx context.Context, d time.Duration) {},
	}, members
}

func TestEngineEndToEnd(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	blacklisted := withAccount(testCreator(10), zora.PlatformTwitter, "spammer", i64(5))
	blacklisted.Address = "0xAAA1"
	bigToken := withCoin(testCreator(0), "750000")
	bigToken.Address = "0xAAA2"
	quiet := testCreator(50)
	quiet.Address = "0xAAA3"

	feed := &fakeFeed{creators: []zora.Creator{blacklisted, bigToken, quiet}}
	notifier := &fakeNotifier{}
	eng, members := newTestEngine(feed, notifier)

	_, err := members.Add(ctx, memberstore.SetBlacklist, "spammer")
	require.NoError(t, err)

	require.NoError(t, eng.PollOnce(ctx))

	// blacklisted creator suppressed entirely, the other two alerted
	assert.Equal([]string{"0xAAA2", "0xAAA3"}, notifier.general)
	if assert.Len(notifier.high, 1) {
		assert.Equal("0xAAA2", notifier.high[0].Address)
		assert.Contains(notifier.high[0].Reason, "750,000")
	}

	// all three marked processed regardless of routing
	for _, addr := range []string{"0xaaa1", "0xaaa2", "0xaaa3"} {
		seen, _ := members.Contains(ctx, memberstore.SetProcessed, addr)
		assert.True(seen, addr)
	}

	// auto-blacklist is off, so the blacklist is untouched
	count, _ := members.Count(ctx, memberstore.SetBlacklist)
	assert.Equal(int64(1), count)
}

func TestEngineDedupAcrossCycles(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	c := testCreator(50)
	c.Address = "0xBBB1"
	feed := &fakeFeed{creators: []zora.Creator{c}}
	notifier := &fakeNotifier{}
	eng, _ := newTestEngine(feed, notifier)

	assert.NoError(eng.PollOnce(ctx))
	assert.NoError(eng.PollOnce(ctx))
	assert.NoError(eng.PollOnce(ctx))

	assert.Len(notifier.general, 1)
}

func TestEngineCaseInsensitiveDedup(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	lower := testCreator(50)
	lower.Address = "0xcafe"
	upper := testCreator(50)
	upper.Address = "0xCAFE"

	feed := &fakeFeed{creators: []zora.Creator{lower, upper}}
	notifier := &fakeNotifier{}
	eng, _ := newTestEngine(feed, notifier)

	assert.NoError(eng.PollOnce(ctx))
	assert.Len(notifier.general, 1)
}

func TestEngineAlphaOverride(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	c := testCreator(50) // well below the threshold
	c.Address = "0xCCC1"
	c.Profile.Username = "UFO"

	feed := &fakeFeed{creators: []zora.Creator{c}}
	notifier := &fakeNotifier{}
	eng, members := newTestEngine(feed, notifier)
	assert.NoError(members.AddWithNote(ctx, memberstore.SetAlpha, "ufo", "early zora whale"))

	assert.NoError(eng.PollOnce(ctx))

	if assert.Len(notifier.high, 1) {
		assert.Equal("ALPHA USER", notifier.high[0].Reason)
		assert.Equal("early zora whale", notifier.high[0].Note)
	}
}

func TestEngineAlphaReasonBeatsClassifier(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	// both the alpha list and the classifier fire; the alpha reason wins
	c := withCoin(testCreator(0), "900000")
	c.Address = "0xDDD1"
	c.Profile.Username = "whale"

	feed := &fakeFeed{creators: []zora.Creator{c}}
	notifier := &fakeNotifier{}
	eng, members := newTestEngine(feed, notifier)
	_, err := members.Add(ctx, memberstore.SetAlpha, "whale")
	assert.NoError(err)

	assert.NoError(eng.PollOnce(ctx))

	if assert.Len(notifier.high, 1) {
		assert.Equal("ALPHA USER", notifier.high[0].Reason)
	}
}

func TestEngineAutoBlacklist(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	c := withAccount(testCreator(50), zora.PlatformTwitter, "OneHit", i64(10))
	c.Address = "0xEEE1"

	feed := &fakeFeed{creators: []zora.Creator{c}}
	notifier := &fakeNotifier{}
	eng, members := newTestEngine(feed, notifier)
	eng.AutoBlacklist = true

	assert.NoError(eng.PollOnce(ctx))

	// the handle is blacklisted after the notification went out
	assert.Len(notifier.general, 1)
	banned, _ := members.Contains(ctx, memberstore.SetBlacklist, "onehit")
	assert.True(banned)
}

func TestEngineMarksProcessedOnNotifierFailure(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	c := testCreator(50)
	c.Address = "0xFFF1"

	feed := &fakeFeed{creators: []zora.Creator{c}}
	notifier := &fakeNotifier{failSends: true}
	eng, members := newTestEngine(feed, notifier)

	// a failed send never aborts the cycle, and the address is still marked
	// processed: a duplicate alert is worse than a missed one
	assert.NoError(eng.PollOnce(ctx))
	seen, _ := members.Contains(ctx, memberstore.SetProcessed, "0xfff1")
	assert.True(seen)

	notifier.failSends = false
	assert.NoError(eng.PollOnce(ctx))
	assert.Empty(notifier.general)
}

func TestEngineFetchErrorAbortsCycle(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	feed := &fakeFeed{err: errors.New("upstream down")}
	notifier := &fakeNotifier{}
	eng, _ := newTestEngine(feed, notifier)

	err := eng.PollOnce(ctx)
	assert.Error(err)
	assert.Empty(notifier.general)
}
