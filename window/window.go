// Package window runs one bracket-coloring session per acme window.
//
// Each session owns two acme-styles layers: one coloring every bracket by
// nesting level, and one painting the background of the innermost bracket
// block around the window's selection.
package window

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"9fans.net/go/acme"
	"github.com/cptaffe/acme-brackets"
	"github.com/cptaffe/acme-brackets/logger"
	"github.com/cptaffe/acme-brackets/syntax"
	"github.com/cptaffe/acme-styles/layer"
	"go.uber.org/zap"
)

const (
	colorLayerName     = "brackets"
	selectionLayerName = "brackets-selection"
)

// errWindowClosed is returned by runWindowOnce when the window's edit log
// reaches EOF cleanly, i.e. the user closed the window.
var errWindowClosed = errors.New("window closed")

// maxRetries is the number of times RunWindow will retry a transient error
// before giving up on a window.
const maxRetries = 8

// RunWindow is the per-window entry point.  It detects the file's language
// (filename patterns first, shebang fallback) and runs sessions via
// runWindowOnce, retrying transient errors with backoff.  It exits when the
// window is closed, the context is cancelled, or retries are exhausted, and
// drops the window's cache entry on the way out.
func RunWindow(ctx context.Context, id int, name string, shared *Shared) {
	ctx = logger.With(ctx, zap.Int("window", id), zap.String("name", name))
	log := logger.L(ctx)
	defer shared.Cache.Invalidate(id)

	lang := detectLang(id, name, shared.current().handlers)
	if lang == nil {
		log.Debug("no handler matched")
		return
	}
	log.Debug("matched language", zap.String("lang", lang.Name))

	b := newBackoff(100*time.Millisecond, 5*time.Second)
	for attempt := 0; attempt < maxRetries; attempt++ {
		started := time.Now()
		err := runWindowOnce(ctx, id, lang, shared)
		switch {
		case errors.Is(err, errWindowClosed):
			log.Debug("window closed")
			return
		case ctx.Err() != nil:
			return
		}
		if time.Since(started) > b.max {
			b.reset()
		}
		delay := b.next()
		log.Debug("session error, retrying",
			zap.Error(err), zap.Int("attempt", attempt+1), zap.Duration("in", delay))
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
	log.Warn("session failed after retries", zap.Int("attempts", maxRetries))
}

// detectLang returns the Language for the given window, reading the body
// for a shebang only when no filename pattern matches.
func detectLang(id int, name string, handlers []syntax.Handler) *syntax.Language {
	if lang := syntax.DetectLanguage(handlers, name, nil); lang != nil {
		return lang
	}
	w, err := acme.Open(id, nil)
	if err != nil {
		return nil
	}
	body, err := w.ReadBody()
	w.CloseFiles()
	if err != nil {
		return nil
	}
	return syntax.DetectLanguage(handlers, name, body)
}

// session is the state of one runWindowOnce call.  It is owned by that
// call's goroutine.
type session struct {
	id     int
	lang   *syntax.Language
	shared *Shared
	win    *acme.Win
	colors *layer.StyleLayer
	block  *layer.StyleLayer

	gen   uint64 // settings generation last painted with
	rev   uint64 // body revision from Shared.nextRevision, the cache stamp
	text  string
	admit brackets.AdmitFunc
	safe  bool // body passed the size gate

	dot     [2]int
	painted brackets.Pair
	hasPair bool
}

// runWindowOnce performs one complete session for a window:
//   - opens the two acme-styles layers,
//   - opens the window via the shared acme connection,
//   - does an initial scan and paint,
//   - watches the per-window edit log and rescans after edits, and
//   - polls the selection and repaints the enclosing block when it moves.
//
// It returns errWindowClosed on clean log EOF, ctx.Err() if the context is
// cancelled, or another error for transient failures the caller should retry.
func runWindowOnce(ctx context.Context, id int, lang *syntax.Language, shared *Shared) error {
	log := logger.L(ctx)

	colors, err := layer.Open(id, colorLayerName)
	if err != nil {
		return fmt.Errorf("open color layer: %w", err)
	}
	defer colors.Delete()
	block, err := layer.Open(id, selectionLayerName)
	if err != nil {
		return fmt.Errorf("open selection layer: %w", err)
	}
	defer block.Delete()
	log.Debug("allocated layers", zap.Int("colors", colors.LayerID), zap.Int("selection", block.LayerID))

	w, err := acme.Open(id, nil)
	if err != nil {
		return fmt.Errorf("open acme win: %w", err)
	}

	s := &session{id: id, lang: lang, shared: shared, win: w, colors: colors, block: block}
	if err := s.highlight(ctx); err != nil {
		w.CloseFiles()
		return fmt.Errorf("initial highlight: %w", err)
	}
	log.Debug("initial highlight ok")

	cfg := shared.Config()
	timer := time.NewTimer(cfg.Debounce)
	timer.Stop()
	pending := false
	poll := time.NewTicker(cfg.PollInterval)
	defer poll.Stop()

	// edits carries edit notifications (I/D events) from the log goroutine.
	// logResult carries the exit reason: nil = clean EOF (window closed), else error.
	edits := make(chan struct{}, 32)
	logResult := make(chan error, 1)
	logExited := make(chan struct{})

	go func() {
		defer close(logExited)
		for {
			e, err := w.ReadLog()
			if err != nil {
				logResult <- err
				return
			}
			if e.Op == 'I' || e.Op == 'D' {
				select {
				case edits <- struct{}{}:
				default:
				}
			}
		}
	}()

	defer func() {
		w.CloseFiles() // closes the log fid, unblocking ReadLog in the goroutine
		<-logExited
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-edits:
			if !pending {
				timer.Reset(shared.Config().Debounce)
				pending = true
			}

		case err := <-logResult:
			if err == nil {
				return errWindowClosed
			}
			return err

		case <-timer.C:
			pending = false
			if err := s.highlight(ctx); err != nil {
				return fmt.Errorf("re-highlight: %w", err)
			}

		case <-poll.C:
			if s.gen != shared.current().gen {
				log.Debug("settings reloaded, repainting")
				if err := s.highlight(ctx); err != nil {
					return fmt.Errorf("repaint after reload: %w", err)
				}
				continue
			}
			if err := s.updateSelection(ctx); err != nil {
				return fmt.Errorf("selection: %w", err)
			}
		}
	}
}

// highlight reads the body as a new revision, scans it through the shared
// cache, and repaints both layers.
func (s *session) highlight(ctx context.Context) error {
	log := logger.L(ctx)
	st := s.shared.current()
	s.gen = st.gen

	// ReadBody opens a fresh fid each time so reading always starts at offset 0.
	body, err := s.win.ReadBody()
	if err != nil {
		return err
	}
	s.dot = [2]int{-1, -1}
	marks := s.load(ctx, st, body)
	if !s.safe {
		log.Debug("skipping window", zap.Bool("enabled", st.cfg.Enabled), zap.Int("bytes", len(body)))
	}
	log.Debug("bracket marks computed", zap.Int("count", len(marks)), zap.Uint64("rev", s.rev))

	if err := s.colors.Apply(colorEntries(marks, st.cfg)); err != nil {
		return fmt.Errorf("paint colors: %w", err)
	}
	s.hasPair = true // force the block layer to be rewritten
	return s.updateSelection(ctx)
}

// load records body as the session's new revision and returns its marks,
// or nil when the window is disabled or the body is over the size limit.
func (s *session) load(ctx context.Context, st *settings, body []byte) []brackets.Mark {
	s.rev = s.shared.nextRevision()
	s.text = string(body)
	s.safe = st.cfg.Enabled && st.gov.DocumentSafe(utf8.RuneCount(body))
	if !s.safe {
		return nil
	}
	marks, _ := brackets.Timed(ctx, st.gov, brackets.OpScan, func() []brackets.Mark {
		s.admit = brackets.AllOf(st.cfg.Admission(), syntax.Admission(s.lang, body))
		return s.shared.Cache.All(s.id, s.rev, s.text, s.admit)
	})
	return marks
}

// updateSelection samples dot and repaints the block layer if the pair to
// highlight changed.
func (s *session) updateSelection(ctx context.Context) error {
	q0, q1, err := readDot(s.win)
	if err != nil {
		return fmt.Errorf("read dot: %w", err)
	}
	if q0 == s.dot[0] && q1 == s.dot[1] {
		return nil
	}
	s.dot = [2]int{q0, q1}

	st := s.shared.current()
	var (
		p  brackets.Pair
		ok bool
	)
	if s.safe && st.cfg.HighlightSelection {
		res, _ := brackets.Timed(ctx, st.gov, brackets.OpSelection, func() blockResult {
			marks := s.shared.Cache.All(s.id, s.rev, s.text, s.admit)
			p, ok := resolveBlock(marks, q0, q1, st.cfg)
			return blockResult{p, ok}
		})
		p, ok = res.pair, res.ok
	}

	if ok == s.hasPair && p == s.painted {
		return nil
	}
	s.painted, s.hasPair = p, ok
	if !ok {
		return s.block.Apply(nil)
	}
	return s.block.Apply(blockEntries(p, st.cfg))
}

type blockResult struct {
	pair brackets.Pair
	ok   bool
}

// readDot returns the window's current selection as rune offsets.
func readDot(w *acme.Win) (q0, q1 int, err error) {
	// The addr file must be open for addr=dot to take effect.
	if _, _, err := w.ReadAddr(); err != nil {
		return 0, 0, err
	}
	if err := w.Ctl("addr=dot"); err != nil {
		return 0, 0, err
	}
	return w.ReadAddr()
}
