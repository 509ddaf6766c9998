package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var (
	watchExisting    bool
	watchClassify    bool
	watchSettle      time.Duration
	watchMetricsAddr string
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Process PDFs as they arrive in a directory",
	Long: `Watches an inbox directory and processes every PDF written to it.
A file is processed once it has stopped changing for the settle period,
so partially copied scans are not picked up.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchExisting, "existing", false, "also process PDFs already in the directory")
	watchCmd.Flags().BoolVar(&watchClassify, "classify", true, "classify each document after indexing")
	watchCmd.Flags().DurationVar(&watchSettle, "settle", 2*time.Second, "quiet period before a new file is processed")
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9464)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := requirePipeline(); err != nil {
		return err
	}
	ctx := commandContext(cmd)
	if err := loadIndices(ctx); err != nil {
		return fmt.Errorf("failed to load indices: %w", err)
	}

	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	if addr, err := serveMetrics(ctx, watchMetricsAddr); err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	} else if addr != "" {
		cmd.Printf("Metrics on http://%s/metrics\n", addr)
	}

	w, err := newInboxWatcher(dir, watchSettle)
	if err != nil {
		return err
	}
	defer w.Close()

	if watchExisting {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if !e.IsDir() && isInboxPDF(e.Name()) {
				processInboxFile(ctx, cmd, filepath.Join(dir, e.Name()))
			}
		}
	}

	cmd.Printf("Watching %s for PDFs (Ctrl+C to stop)\n", dir)
	return w.Run(ctx, func(path string) {
		processInboxFile(ctx, cmd, path)
	})
}

// processInboxFile reports failures and keeps watching.
func processInboxFile(ctx context.Context, cmd *cobra.Command, path string) {
	meta, err := pipelineService.ProcessDocument(ctx, path)
	if err != nil {
		cmd.PrintErrf("Failed to process %s: %v\n", filepath.Base(path), err)
		return
	}
	cmd.Printf("Processed %s: %d pages, document ID %s\n", meta.Filename, meta.PageCount, meta.ID)

	if !watchClassify {
		return
	}
	result, err := pipelineService.ClassifyDocument(ctx, meta.ID)
	if err != nil {
		cmd.PrintErrf("Failed to classify %s: %v\n", meta.Filename, err)
		return
	}
	cmd.Printf("  Classified as %s (%.1f%%)\n", result.DocumentType, result.ConfidenceScore*100)
}

// inboxWatcher turns fsnotify events into settled PDF paths.
type inboxWatcher struct {
	watcher *fsnotify.Watcher
	settle  time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
	// delivered holds every path already sent on ready; none is queued twice.
	delivered map[string]struct{}
	ready     chan string
}

func newInboxWatcher(dir string, settle time.Duration) (*inboxWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	return &inboxWatcher{
		watcher:   watcher,
		settle:    settle,
		pending:   make(map[string]*time.Timer),
		delivered: make(map[string]struct{}),
		ready:     make(chan string, 16),
	}, nil
}

// Run calls handle for each settled PDF, one at a time, until ctx is done.
func (w *inboxWatcher) Run(ctx context.Context, handle func(path string)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case path := <-w.ready:
			handle(path)
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if path, ok := w.handleEvent(ev); ok {
				w.schedule(path)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch error: %w", err)
		}
	}
}

// handleEvent returns the path of a visible PDF that was created or written.
func (w *inboxWatcher) handleEvent(ev fsnotify.Event) (string, bool) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return "", false
	}
	if !isInboxPDF(filepath.Base(ev.Name)) {
		return "", false
	}
	info, err := os.Stat(ev.Name)
	if err != nil || info.IsDir() {
		return "", false
	}
	return ev.Name, true
}

// schedule (re)starts the settle timer of path. Paths already delivered
// are ignored for the life of the watcher.
func (w *inboxWatcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, done := w.delivered[path]; done {
		return
	}
	if t, ok := w.pending[path]; ok {
		t.Reset(w.settle)
		return
	}
	w.pending[path] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.delivered[path] = struct{}{}
		w.mu.Unlock()
		w.ready <- path
	})
}

// Close stops the watcher and pending timers.
func (w *inboxWatcher) Close() error {
	w.mu.Lock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()
	return w.watcher.Close()
}

func isInboxPDF(name string) bool {
	return !strings.HasPrefix(name, ".") && strings.EqualFold(filepath.Ext(name), ".pdf")
}
