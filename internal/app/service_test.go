package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/samemean/internal/adapters/session"
	service "github.com/okian/samemean/internal/app"
	"github.com/okian/samemean/internal/domain/catalog"
	"github.com/okian/samemean/internal/domain/selection"
	"github.com/okian/samemean/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func startedService(opts ...service.Option) *service.Service {
	opts = append([]service.Option{
		service.WithSessionStore(session.NewExpiringStore(session.WithCleanupInterval(0))),
	}, opts...)
	svc := service.New(opts...)
	if err := svc.Start(context.Background()); err != nil {
		panic(err)
	}
	return svc
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(
			service.WithSessionTTL(time.Minute),
			service.WithMaxSessions(100),
			service.WithSessionStore(session.NewExpiringStore(session.WithCleanupInterval(0))),
		)
		defer svc.Stop()

		Convey("When it is used before starting", func() {
			_, _, _, err := svc.Mount(context.Background(), "")

			Convey("Then it reports it is not started", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})

		Convey("When starting the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["datasets"], ShouldEqual, 3)
				So(stats["sessionTTL"], ShouldEqual, "1m0s")
				So(stats["uptime"], ShouldNotBeEmpty)
				So(stats["uptime"], ShouldNotContainSubstring, "ago")
			})

			Convey("And the embedded table's disagreements are reported", func() {
				So(svc.GetStats()["inconsistentIn"], ShouldContain, "dataset2")
			})

			Convey("And starting twice is harmless", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})

			Convey("And stopping marks it stopped", func() {
				svc.Stop()
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_Mount(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startedService()
		defer svc.Stop()
		ctx := context.Background()

		Convey("When a widget is mounted without a session", func() {
			sid, st, created, err := svc.Mount(ctx, "")

			Convey("Then a fresh instance starts in the initial state", func() {
				So(err, ShouldBeNil)
				So(sid, ShouldNotBeEmpty)
				So(created, ShouldBeTrue)
				So(st, ShouldResemble, selection.Initial("dataset1"))
			})

			Convey("And mounting again returns the same instance", func() {
				again, _, created, err := svc.Mount(ctx, sid)
				So(err, ShouldBeNil)
				So(again, ShouldEqual, sid)
				So(created, ShouldBeFalse)
			})
		})
	})
}

// countingStore records how often each session is stored.
type countingStore struct {
	session.Store
	mu   sync.Mutex
	puts map[string]int
}

func (c *countingStore) Put(ctx context.Context, id string, st selection.State) {
	c.mu.Lock()
	c.puts[id]++
	c.mu.Unlock()
	c.Store.Put(ctx, id, st)
}

func (c *countingStore) putsFor(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.puts[id]
}

func TestService_MountRefreshesTTL(t *testing.T) {
	Convey("Given a started service over a counting store", t, func() {
		store := &countingStore{
			Store: session.NewExpiringStore(session.WithCleanupInterval(0)),
			puts:  map[string]int{},
		}
		svc := startedService(service.WithSessionStore(store))
		defer svc.Stop()
		ctx := context.Background()

		sid, _, _, err := svc.Mount(ctx, "")
		So(err, ShouldBeNil)
		So(store.putsFor(sid), ShouldEqual, 1)

		Convey("When the live instance is mounted again", func() {
			_, st, created, err := svc.Mount(ctx, sid)

			Convey("Then its state is stored again, restarting the time to live", func() {
				So(err, ShouldBeNil)
				So(created, ShouldBeFalse)
				So(st, ShouldResemble, selection.Initial("dataset1"))
				So(store.putsFor(sid), ShouldEqual, 2)
			})
		})

		Convey("When an action is applied", func() {
			st, err := svc.ToggleStats(ctx, sid)
			So(err, ShouldBeNil)

			Convey("Then the refreshed state is the new one", func() {
				_, stored, _, _ := svc.Mount(ctx, sid)
				So(stored, ShouldResemble, st)
				So(stored.StatsVisible, ShouldBeFalse)
			})
		})
	})
}

func TestService_Actions(t *testing.T) {
	Convey("Given a mounted widget", t, func() {
		svc := startedService()
		defer svc.Stop()
		ctx := context.Background()
		sid, _, _, err := svc.Mount(ctx, "")
		So(err, ShouldBeNil)

		Convey("When the interpretation is opened and another class selected", func() {
			_, err := svc.ToggleInterpretation(ctx, sid)
			So(err, ShouldBeNil)
			st, err := svc.SelectDataset(ctx, sid, "dataset2")
			So(err, ShouldBeNil)

			Convey("Then the new class is shown with the interpretation collapsed", func() {
				So(st.SelectedID, ShouldEqual, "dataset2")
				So(st.InterpretationVisible, ShouldBeFalse)
				So(st.StatsVisible, ShouldBeTrue)
			})

			Convey("And the state is remembered for the session", func() {
				_, stored, _, _ := svc.Mount(ctx, sid)
				So(stored, ShouldResemble, st)
			})
		})

		Convey("When stats are toggled twice", func() {
			_, _ = svc.ToggleStats(ctx, sid)
			st, err := svc.ToggleStats(ctx, sid)

			Convey("Then nothing changed", func() {
				So(err, ShouldBeNil)
				So(st, ShouldResemble, selection.Initial("dataset1"))
			})
		})

		Convey("When an unknown dataset is selected", func() {
			_, err := svc.SelectDataset(ctx, sid, "dataset9")

			Convey("Then ErrUnknownDataset is returned and the state is untouched", func() {
				So(errors.Is(err, service.ErrUnknownDataset), ShouldBeTrue)
				_, st, _, _ := svc.Mount(ctx, sid)
				So(st.SelectedID, ShouldEqual, "dataset1")
			})
		})

		Convey("When an unknown action is applied", func() {
			_, err := svc.Apply(ctx, sid, selection.Action("shuffle"), "")

			Convey("Then ErrUnknownAction is returned", func() {
				So(errors.Is(err, selection.ErrUnknownAction), ShouldBeTrue)
			})
		})

		Convey("When the widget is unmounted", func() {
			_, _ = svc.SelectDataset(ctx, sid, "dataset3")
			svc.Unmount(ctx, sid)
			_, st, created, err := svc.Mount(ctx, sid)

			Convey("Then the next mount starts fresh", func() {
				So(err, ShouldBeNil)
				So(created, ShouldBeTrue)
				So(st.SelectedID, ShouldEqual, "dataset1")
			})
		})
	})
}

func TestService_Views(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startedService()
		defer svc.Stop()
		ctx := context.Background()

		Convey("Then the page for a state is composed", func() {
			view, err := svc.Page(ctx, selection.Initial("dataset1").SelectDataset("dataset3"))
			So(err, ShouldBeNil)
			So(view.Heading, ShouldEqual, "Class C: Right-Skewed")
			So(view.Cards[2].Selected, ShouldBeTrue)
		})

		Convey("Then records, charts and consistency reports are served by id", func() {
			ds, err := svc.Dataset("dataset2")
			So(err, ShouldBeNil)
			So(ds.SD, ShouldEqual, 28)

			chart, err := svc.Chart("dataset2")
			So(err, ShouldBeNil)
			So(chart.MaxCount, ShouldEqual, 35)
			So(chart.Stats, ShouldNotBeNil)

			report, err := svc.Consistency("dataset2")
			So(err, ShouldBeNil)
			So(report.Consistent, ShouldBeFalse)

			So(svc.Datasets(), ShouldHaveLength, 3)
		})

		Convey("Then unknown ids are rejected", func() {
			_, err := svc.Chart("nope")
			So(errors.Is(err, service.ErrUnknownDataset), ShouldBeTrue)
		})
	})

	Convey("Given a service with an injected registry", t, func() {
		ds, _ := catalog.Default().Lookup("dataset3")
		reg, err := catalog.New([]catalog.Dataset{ds})
		So(err, ShouldBeNil)
		svc := startedService(service.WithCatalog(reg))
		defer svc.Stop()

		Convey("Then a fresh mount selects its first entry", func() {
			_, st, _, err := svc.Mount(context.Background(), "")
			So(err, ShouldBeNil)
			So(st.SelectedID, ShouldEqual, "dataset3")
		})
	})
}
