package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"

	"voxlis/internal/cache"
	"voxlis/internal/report"
	"voxlis/internal/resolve"
	"voxlis/internal/upstream"
)

const textDoc = `Testing Date and Time: 2024-05-01 12:00
Tested with a 82% success rate (41 out of 50)
✅ readfile
❌ writefile
✅ getgenv
`

var textDocPadded = textDoc + strings.Repeat(" ", 10) + "\n" + strings.Repeat("-", 40)

type fakeSources struct {
	mu        sync.Mutex
	exploits  []upstream.Exploit
	deep      []byte
	deepErr   error
	deepCalls int
	text      map[string]string
	textErr   error
}

func (f *fakeSources) Exploits(context.Context) (*upstream.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &upstream.Listing{Exploits: f.exploits}, nil
}

type deepFake struct{ *fakeSources }

func (d deepFake) Fetch(context.Context, string, string) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deepCalls++
	return d.deep, d.deepErr
}

type textFake struct{ *fakeSources }

func (t textFake) Fetch(_ context.Context, slug string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.textErr != nil {
		return "", t.textErr
	}
	return t.text[slug], nil
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newService(src *fakeSources, clock *testClock) *Service {
	r := resolve.New(src, deepFake{src}, textFake{src}, map[string]string{"wave": "wave", "xeno": "xeno"})
	return New(r, WithReportCache(NewReportCache(cache.WithClock(clock.Now)), DefaultReportTTL))
}

func credEntry(title string) upstream.Exploit {
	pct := 86.6
	return upstream.Exploit{
		Title:          title,
		Version:        "1.2.3",
		UpdatedDate:    "2024-05-02",
		SuncPercentage: &pct,
		Sunc:           &upstream.SuncRef{Scrap: "s", Key: "k"},
	}
}

func TestReport_StaticText(t *testing.T) {
	src := &fakeSources{text: map[string]string{"xeno": textDocPadded}}
	svc := newService(src, &testClock{now: time.Unix(1000, 0)})

	r, st, err := svc.Report(context.Background(), "Xeno", report.KindBasic)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if st != cache.Miss {
		t.Errorf("status = %s", st)
	}
	got := []any{r.ExecutorName, r.Source, r.Percentage, r.Passed, r.Total, r.Failed, r.TestDate}
	want := []any{"Xeno", SourceStaticText, 82, 41, 50, 9, "2024-05-01 12:00"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
	if fs := r.Categories["filesystem"]; len(fs) != 2 {
		t.Errorf("filesystem = %+v", fs)
	}

	if _, st, _ := svc.Report(context.Background(), "xeno", report.KindBasic); st != cache.Hit {
		t.Errorf("second lookup status = %s, want HIT", st)
	}
}

func TestReport_DeepReport(t *testing.T) {
	src := &fakeSources{
		exploits: []upstream.Exploit{credEntry("Wave")},
		deep:     []byte(`{"__SUNC":true,"executor":"Wave/2.0","tests":{"passed":["getgenv"],"failed":{"readfile":"nope"}}}`),
	}
	svc := newService(src, &testClock{now: time.Unix(1000, 0)})

	r, _, err := svc.Report(context.Background(), "wave", report.KindSecure)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if r.Source != SourceDeepReport || r.ExecutorName != "Wave" || r.Passed != 1 || r.Total != 2 {
		t.Errorf("report = %+v", r)
	}
	if r.ExecutorVersion != "1.2.3" {
		t.Errorf("ExecutorVersion = %q", r.ExecutorVersion)
	}
}

func TestReport_UnmarkedDeepPayloadFallsBackToText(t *testing.T) {
	src := &fakeSources{
		exploits: []upstream.Exploit{credEntry("Wave")},
		deep:     []byte(`{"hello":"world"}`),
		text:     map[string]string{"wave": textDocPadded},
	}
	svc := newService(src, &testClock{now: time.Unix(1000, 0)})

	r, _, err := svc.Report(context.Background(), "wave", report.KindSecure)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if r.Source != SourceStaticText {
		t.Errorf("source = %q", r.Source)
	}
}

func TestReport_PlaceholderIsNotCached(t *testing.T) {
	src := &fakeSources{
		exploits: []upstream.Exploit{credEntry("Ghost")},
		deepErr:  errors.New("rubis down"),
	}
	svc := newService(src, &testClock{now: time.Unix(1000, 0)})

	for i := 0; i < 2; i++ {
		r, st, err := svc.Report(context.Background(), "ghost", report.KindSecure)
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if st != cache.Miss || r.Source != SourcePlaceholder {
			t.Errorf("call %d: status=%s source=%q", i, st, r.Source)
		}
		if r.Percentage != 87 || r.Total != 0 || r.TestDate != "2024-05-02" || r.ExecutorName != "Ghost" {
			t.Errorf("placeholder = %+v", r)
		}
	}
	if src.deepCalls != 2 {
		t.Errorf("deep fetched %d times, want 2", src.deepCalls)
	}
}

func TestReport_StaleOnUpstreamFailure(t *testing.T) {
	clock := &testClock{now: time.Unix(1000, 0)}
	src := &fakeSources{text: map[string]string{"xeno": textDocPadded}}
	svc := newService(src, clock)

	if _, _, err := svc.Report(context.Background(), "xeno", report.KindBasic); err != nil {
		t.Fatal(err)
	}
	clock.Advance(10 * time.Minute)
	src.textErr = errors.New("connection reset")

	r, st, err := svc.Report(context.Background(), "xeno", report.KindBasic)
	if err != nil || st != cache.Stale || r.Passed != 41 {
		t.Errorf("got %v, %s, %v", r, st, err)
	}
}

func TestReport_StaleOnTextServiceOutage(t *testing.T) {
	var code atomic.Int32
	code.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if c := int(code.Load()); c != http.StatusOK {
			http.Error(w, http.StatusText(c), c)
			return
		}
		w.Write([]byte(textDocPadded))
	}))
	defer srv.Close()
	text, err := upstream.NewTextClient(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	clock := &testClock{now: time.Unix(1000, 0)}
	src := &fakeSources{}
	r := resolve.New(src, deepFake{src}, text, map[string]string{"xeno": "xeno"})
	svc := New(r, WithReportCache(NewReportCache(cache.WithClock(clock.Now)), DefaultReportTTL))

	ctx := context.Background()
	if _, _, err := svc.Report(ctx, "xeno", report.KindBasic); err != nil {
		t.Fatalf("seed: %v", err)
	}
	clock.Advance(10 * time.Minute)
	code.Store(http.StatusServiceUnavailable)

	got, st, err := svc.Report(ctx, "xeno", report.KindBasic)
	if err != nil || st != cache.Stale || got == nil || got.Passed != 41 {
		t.Fatalf("after outage: %v, %s, %v", got, st, err)
	}

	// Without a cached copy the outage is an error, not a missing report.
	_, _, err = svc.Report(ctx, "Xeno ", report.KindSecure)
	if err == nil || errors.Is(err, resolve.ErrNotFound) {
		t.Errorf("uncached outage: expected an upstream error, got %v", err)
	}
}

func TestReport_ShortGlyphDocumentIsNotFound(t *testing.T) {
	doc := strings.Repeat("✅ getgenv\n", 9)
	src := &fakeSources{text: map[string]string{"xeno": doc}}
	svc := newService(src, &testClock{now: time.Unix(1000, 0)})

	_, _, err := svc.Report(context.Background(), "xeno", report.KindBasic)
	if !errors.Is(err, resolve.ErrNotFound) {
		t.Errorf("expected ErrNotFound for a %d-byte, %d-rune document, got %v", len(doc), utf8.RuneCountInString(doc), err)
	}
}

func TestReport_NotFoundIsNeverServedStale(t *testing.T) {
	clock := &testClock{now: time.Unix(1000, 0)}
	src := &fakeSources{text: map[string]string{"xeno": textDocPadded}}
	svc := newService(src, clock)

	if _, _, err := svc.Report(context.Background(), "xeno", report.KindBasic); err != nil {
		t.Fatal(err)
	}
	clock.Advance(10 * time.Minute)
	src.text = map[string]string{"xeno": "too short"}

	_, _, err := svc.Report(context.Background(), "xeno", report.KindBasic)
	if !errors.Is(err, resolve.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestReport_UnknownExecutor(t *testing.T) {
	svc := newService(&fakeSources{}, &testClock{now: time.Unix(1000, 0)})
	_, _, err := svc.Report(context.Background(), "nobody", report.KindSecure)
	var nf *resolve.NotFoundError
	if !errors.As(err, &nf) || nf.Reason != resolve.ReasonUnknownExecutor {
		t.Errorf("expected unknown-executor, got %v", err)
	}
}

func TestKey(t *testing.T) {
	if got := Key(" Wave ", report.KindBasic); got != "wave_unc" {
		t.Errorf("Key = %q", got)
	}
}

func TestPlaceholder_NilEntry(t *testing.T) {
	r := Placeholder("x", nil)
	if r.ExecutorName != "x" || r.Source != SourcePlaceholder || r.Results == nil {
		t.Errorf("placeholder = %+v", r)
	}
}

func TestWarm(t *testing.T) {
	src := &fakeSources{text: map[string]string{"xeno": textDocPadded}}
	svc := newService(src, &testClock{now: time.Unix(1000, 0)})

	jobs := Jobs([]string{"xeno", "nobody"}, report.KindBasic, report.KindSecure)
	if len(jobs) != 4 {
		t.Fatalf("jobs = %d", len(jobs))
	}
	results := svc.Warm(context.Background(), jobs, 2)

	for i, res := range results {
		if res.WarmJob != jobs[i] {
			t.Errorf("result %d out of order: %+v", i, res.WarmJob)
		}
		wantErr := res.Name == "nobody"
		if (res.Err != nil) != wantErr {
			t.Errorf("%s/%s err = %v", res.Name, res.Kind, res.Err)
		}
	}
	if results[0].Passed != 41 || results[0].Source != SourceStaticText {
		t.Errorf("xeno/unc = %+v", results[0])
	}
}
