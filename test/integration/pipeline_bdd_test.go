//go:build integration

package integration

import (
	"bytes"
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/focus_mon/internal/daemon"
	"github.com/eliteGoblin/focusd/focus_mon/internal/domain"
	"github.com/eliteGoblin/focusd/focus_mon/internal/infra"
	"github.com/eliteGoblin/focusd/focus_mon/test/fixtures"
)

var _ = Describe("Monitoring pipeline", func() {
	var (
		cfg       daemon.Config
		presenter *recordingPresenter
		journal   *infra.EncryptedJournal
		metrics   *infra.Metrics
		clock     *manualClock
		cancel    context.CancelFunc
		done      chan error
	)

	start := func(deps daemon.Dependencies) *daemon.Supervisor {
		deps.Presenter = presenter
		deps.Journal = journal
		deps.Metrics = metrics
		deps.Clock = clock

		s := daemon.New(cfg, deps, zap.NewNop())
		var ctx context.Context
		ctx, cancel = context.WithCancel(context.Background())
		done = make(chan error, 1)
		go func() { done <- s.Run(ctx) }()
		return s
	}

	BeforeEach(func() {
		cfg = daemon.DefaultConfig()
		cfg.PollInterval = 10 * time.Millisecond
		cfg.ScreenTimeInterval = 0

		presenter = &recordingPresenter{}
		metrics = infra.NewMetrics()
		clock = &manualClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}

		key, err := infra.GenerateKey()
		Expect(err).NotTo(HaveOccurred())
		journal, err = infra.NewEncryptedJournal(GinkgoT().TempDir(), key)
		Expect(err).NotTo(HaveOccurred())

		cancel = nil
	})

	AfterEach(func() {
		if cancel != nil {
			cancel()
			Eventually(done, 2*time.Second).Should(Receive(BeNil()))
		}
		Expect(journal.Close()).To(Succeed())
	})

	Context("when a browser shows a blocked address", func() {
		It("blocks once per cooldown window and journals the decision", func() {
			feed := fixtures.Feed(
				fixtures.Event{App: "com.android.chrome", Kind: domain.KindContentChanged, Root: fixtures.ChromeWindow("https://www.reddit.com/r/golang")},
				fixtures.Event{App: "com.android.chrome", Kind: domain.KindTextChanged, Root: fixtures.ChromeWindow("reddit.com/r/golang/top")},
			)
			s := start(daemon.Dependencies{Source: infra.NewStreamSource(bytes.NewReader(feed), zap.NewNop())})

			Eventually(presenter.Shown, time.Second).Should(Equal([]domain.BlockCategory{domain.CategoryURL}))
			Eventually(s.Handle().Suppressed, time.Second).Should(Equal(int64(1)))
			Consistently(presenter.Shown, 100*time.Millisecond).Should(HaveLen(1))
			Expect(presenter.Calls()).To(Equal([]string{"back", "present"}))

			records, err := journal.Recent(10)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(1))
			Expect(records[0].Target).To(Equal("reddit.com"))
			Expect(records[0].Category).To(Equal(domain.CategoryURL))
			Expect(records[0].AppID).To(Equal("com.android.chrome"))
			Expect(records[0].BlockedAt.Equal(clock.Now())).To(BeTrue())

			Expect(testutil.ToFloat64(metrics.Decisions.WithLabelValues(daemon.SourceEvent, "url", "accepted"))).To(Equal(1.0))
			Expect(testutil.ToFloat64(metrics.Decisions.WithLabelValues(daemon.SourceEvent, "url", "suppressed"))).To(Equal(1.0))
		})

		It("categorizes short-form video separately from other addresses", func() {
			feed := fixtures.Feed(
				fixtures.Event{App: "org.mozilla.firefox", Kind: domain.KindContentChanged, Root: fixtures.FirefoxWindow("m.youtube.com/shorts/abc123")},
				fixtures.Event{App: "com.sec.android.app.sbrowser", Kind: domain.KindFocusChanged, Root: fixtures.SamsungWindow("instagram.com/explore")},
			)
			start(daemon.Dependencies{Source: infra.NewStreamSource(bytes.NewReader(feed), zap.NewNop())})

			Eventually(presenter.Shown, time.Second).Should(Equal([]domain.BlockCategory{
				domain.CategoryShortVideo,
				domain.CategoryURL,
			}))

			Eventually(func() (map[domain.BlockCategory]int, error) {
				return journal.CountSince(clock.Now().Add(-time.Hour))
			}, time.Second).Should(And(
				HaveKeyWithValue(domain.CategoryShortVideo, 1),
				HaveKeyWithValue(domain.CategoryURL, 1),
			))
		})

		It("falls back to searching the tree when no address field is known", func() {
			feed := fixtures.Feed(
				fixtures.Event{App: "com.opera.browser", Kind: domain.KindContentChanged, Root: fixtures.UnlabeledWindow("com.opera.browser", "https://tiktok.com/@someone")},
			)
			start(daemon.Dependencies{Source: infra.NewStreamSource(bytes.NewReader(feed), zap.NewNop())})

			Eventually(presenter.Shown, time.Second).Should(Equal([]domain.BlockCategory{domain.CategoryURL}))
		})

		It("leaves allowed addresses alone", func() {
			feed := fixtures.Feed(
				fixtures.Event{App: "com.android.chrome", Kind: domain.KindContentChanged, Root: fixtures.ChromeWindow("https://youtube.com/watch?v=abc")},
				fixtures.Event{App: "com.android.chrome", Kind: domain.KindContentChanged, Root: fixtures.ChromeWindow("https://pkg.go.dev")},
			)
			start(daemon.Dependencies{Source: infra.NewStreamSource(bytes.NewReader(feed), zap.NewNop())})

			Eventually(func() float64 {
				return testutil.ToFloat64(metrics.Notifications.WithLabelValues(string(domain.KindContentChanged)))
			}, time.Second).Should(Equal(2.0))
			Consistently(presenter.Shown, 100*time.Millisecond).Should(BeEmpty())
		})
	})

	Context("when a blocked app comes to the foreground", func() {
		It("blocks on foreground changes only", func() {
			feed := fixtures.Feed(
				fixtures.Event{App: "com.zhiliaoapp.musically", Kind: domain.KindContentChanged},
				fixtures.Event{App: "com.zhiliaoapp.musically", Kind: domain.KindForegroundChanged},
			)
			s := start(daemon.Dependencies{Source: infra.NewStreamSource(bytes.NewReader(feed), zap.NewNop())})

			Eventually(presenter.Shown, time.Second).Should(Equal([]domain.BlockCategory{domain.CategoryApp}))
			Consistently(presenter.Shown, 100*time.Millisecond).Should(HaveLen(1))

			last, ok := s.Handle().LastDecision()
			Expect(ok).To(BeTrue())
			Expect(last.Target).To(Equal("com.zhiliaoapp.musically"))
		})

		It("blocks again once the cooldown has passed", func() {
			r, w := io.Pipe()
			DeferCleanup(w.Close)
			start(daemon.Dependencies{Source: infra.NewStreamSource(r, zap.NewNop())})

			event := fixtures.Feed(fixtures.Event{App: "com.zhiliaoapp.musically", Kind: domain.KindForegroundChanged})

			_, err := w.Write(event)
			Expect(err).NotTo(HaveOccurred())
			Eventually(presenter.Shown, time.Second).Should(HaveLen(1))

			_, err = w.Write(event)
			Expect(err).NotTo(HaveOccurred())
			Consistently(presenter.Shown, 100*time.Millisecond).Should(HaveLen(1))

			clock.Advance(cfg.Cooldown + time.Millisecond)
			_, err = w.Write(event)
			Expect(err).NotTo(HaveOccurred())
			Eventually(presenter.Shown, time.Second).Should(HaveLen(2))
		})
	})

	Context("when the notification feed is silent", func() {
		It("the polling backstop still blocks the foreground app", func() {
			query := &scriptedQuery{}
			query.Set("com.zhiliaoapp.musically", nil)

			r, w := io.Pipe()
			DeferCleanup(w.Close)
			s := start(daemon.Dependencies{
				Source: infra.NewStreamSource(r, zap.NewNop()),
				Query:  query,
			})

			Eventually(presenter.Shown, time.Second).Should(Equal([]domain.BlockCategory{domain.CategoryApp}))
			Eventually(s.Handle().Suppressed, time.Second).Should(BeNumerically(">", 0))
			Expect(testutil.ToFloat64(metrics.Decisions.WithLabelValues(daemon.SourcePoll, "app", "accepted"))).To(Equal(1.0))
		})

		It("keeps polling after the feed ends", func() {
			query := &scriptedQuery{}
			s := start(daemon.Dependencies{
				Source: infra.NewStreamSource(bytes.NewReader(nil), zap.NewNop()),
				Query:  query,
			})

			Eventually(func() float64 {
				return testutil.ToFloat64(metrics.PollSkips.WithLabelValues(daemon.SkipNone))
			}, time.Second).Should(BeNumerically(">", 0))

			query.Set("com.zhiliaoapp.musically", nil)
			Eventually(presenter.Shown, time.Second).Should(HaveLen(1))
			Expect(s.Handle().Running()).To(BeTrue())
		})

		It("degrades to a no-op when the foreground query is unavailable", func() {
			query := &scriptedQuery{}
			query.Set("", domain.ErrForegroundUnavailable)

			r, w := io.Pipe()
			DeferCleanup(w.Close)
			start(daemon.Dependencies{
				Source: infra.NewStreamSource(r, zap.NewNop()),
				Query:  query,
			})

			Eventually(func() float64 {
				return testutil.ToFloat64(metrics.PollSkips.WithLabelValues(daemon.SkipUnavailable))
			}, time.Second).Should(BeNumerically(">=", 3))
			Expect(presenter.Shown()).To(BeEmpty())
		})
	})

	Context("when notifications arrive over a unix socket", func() {
		It("evaluates every connected writer", func() {
			dir, err := os.MkdirTemp("", "fmon")
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(os.RemoveAll, dir)
			path := filepath.Join(dir, "n.sock")

			start(daemon.Dependencies{Source: infra.NewSocketSource(path, zap.NewNop())})

			var conn net.Conn
			Eventually(func() error {
				conn, err = net.Dial("unix", path)
				return err
			}, time.Second, 10*time.Millisecond).Should(Succeed())
			defer conn.Close()

			_, err = conn.Write(fixtures.Feed(
				fixtures.Event{App: "com.android.chrome", Kind: domain.KindContentChanged, Root: fixtures.ChromeWindow("twitter.com/home")},
			))
			Expect(err).NotTo(HaveOccurred())

			Eventually(presenter.Shown, time.Second).Should(Equal([]domain.BlockCategory{domain.CategoryURL}))

			info, err := os.Stat(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o600)))
		})
	})
})
