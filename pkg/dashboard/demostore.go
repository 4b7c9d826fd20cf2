package dashboard

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mpapenbr/f1-dashboard-service/log"
	"github.com/mpapenbr/f1-dashboard-service/pkg/model"
)

// DemoStore provides the demo fixture. If a file is configured it is
// reloaded on change. A broken file keeps the previously loaded fixture.
type DemoStore struct {
	file    string
	now     func() time.Time
	l       *log.Logger
	current atomic.Pointer[model.DashboardViewModel]
}

type DemoOption func(*DemoStore)

func WithDemoFile(arg string) DemoOption {
	return func(d *DemoStore) {
		d.file = arg
	}
}

func WithDemoClock(arg func() time.Time) DemoOption {
	return func(d *DemoStore) {
		d.now = arg
	}
}

func WithDemoLogger(arg *log.Logger) DemoOption {
	return func(d *DemoStore) {
		d.l = arg
	}
}

// NewDemoStore loads the configured file or the built-in fixture
func NewDemoStore(opts ...DemoOption) (*DemoStore, error) {
	ret := &DemoStore{
		now: time.Now,
		l:   log.Default().Named("dashboard.demo"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.file == "" {
		ret.current.Store(DefaultDemo(ret.now()))
		return ret, nil
	}
	if err := ret.load(); err != nil {
		return nil, err
	}
	return ret, nil
}

// Current returns the demo view model. It must not be modified.
func (d *DemoStore) Current() *model.DashboardViewModel {
	return d.current.Load()
}

func (d *DemoStore) load() error {
	data, err := os.ReadFile(d.file)
	if err != nil {
		return err
	}
	vm, err := ParseDemo(data, d.now())
	if err != nil {
		return err
	}
	d.current.Store(vm)
	d.l.Info("demo fixture loaded",
		log.String("file", d.file), log.Int("drivers", len(vm.Drivers)))
	return nil
}

// Watch reloads the fixture file on changes until ctx is done.
// The directory is watched so that files replaced by editors are picked up.
func (d *DemoStore) Watch(ctx context.Context) error {
	if d.file == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(d.file)); err != nil {
		watcher.Close()
		return err
	}
	target := filepath.Clean(d.file)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				d.l.Debug("context done, stopping demo reload")
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target ||
					!(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {

					continue
				}
				d.l.Info("demo file changed, reloading", log.String("file", event.Name))
				if err := d.load(); err != nil {
					d.l.Error("could not reload demo fixture", log.ErrorField(err))
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				d.l.Error("watcher error", log.ErrorField(err))
			}
		}
	}()
	return nil
}
