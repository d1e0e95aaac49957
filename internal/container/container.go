// Package container wires core awaybot services using go.uber.org/dig.
package container

import (
	"fmt"
	"log/slog"

	"go.uber.org/dig"

	"github.com/crystaldolphin/awaybot/internal/away"
	"github.com/crystaldolphin/awaybot/internal/bus"
	"github.com/crystaldolphin/awaybot/internal/channels"
	"github.com/crystaldolphin/awaybot/internal/commands"
	"github.com/crystaldolphin/awaybot/internal/config"
	"github.com/crystaldolphin/awaybot/internal/dispatch"
	"github.com/crystaldolphin/awaybot/internal/heartbeat"
	"github.com/crystaldolphin/awaybot/internal/media"
	"github.com/crystaldolphin/awaybot/internal/providers"
	"github.com/crystaldolphin/awaybot/internal/schedule"
)

// busSize is the capacity of each bus queue.
const busSize = 100

// Container holds the resolved core service singletons.
// Callers use the typed getter methods; they never need to import dig directly.
type Container struct {
	cfg        *config.Config
	msgBus     *bus.MessageBus
	state      *away.State
	provider   *providers.Provider
	channels   *channels.Manager
	dispatcher *dispatch.Dispatcher
	scheduler  *schedule.Service
	heartbeat  *heartbeat.Service
}

func (c *Container) Config() *config.Config           { return c.cfg }
func (c *Container) MessageBus() *bus.MessageBus      { return c.msgBus }
func (c *Container) State() *away.State               { return c.state }
func (c *Container) Provider() *providers.Provider    { return c.provider }
func (c *Container) Channels() *channels.Manager      { return c.channels }
func (c *Container) Dispatcher() *dispatch.Dispatcher { return c.dispatcher }
func (c *Container) Scheduler() *schedule.Service     { return c.scheduler }

// Heartbeat is nil unless away.endNotice is set.
func (c *Container) Heartbeat() *heartbeat.Service { return c.heartbeat }

// New builds and wires all core services from cfg.
func New(cfg *config.Config) (*Container, error) {
	d := dig.New()

	ctors := []any{
		func() *config.Config { return cfg },
		func() away.Clock { return away.SystemClock },
		newMessageBus,
		newState,
		newProcessor,
		newProvider,
		newImageStore,
		newChannelManager,
		newDispatcher,
		newScheduler,
		newHeartbeat,
	}
	for _, p := range ctors {
		if err := d.Provide(p); err != nil {
			return nil, err
		}
	}

	var result *Container
	err := d.Invoke(func(
		msgBus *bus.MessageBus,
		state *away.State,
		provider *providers.Provider,
		mgr *channels.Manager,
		disp *dispatch.Dispatcher,
		sched *schedule.Service,
		hb *heartbeat.Service,
	) {
		result = &Container{
			cfg:        cfg,
			msgBus:     msgBus,
			state:      state,
			provider:   provider,
			channels:   mgr,
			dispatcher: disp,
			scheduler:  sched,
			heartbeat:  hb,
		}
	})
	if err != nil {
		return nil, dig.RootCause(err)
	}
	return result, nil
}

func newMessageBus() *bus.MessageBus {
	return bus.NewMessageBus(busSize)
}

// newState seeds the session from config. Runtime changes are never saved.
func newState(cfg *config.Config) *away.State {
	length, ok := away.ParseLength(cfg.Away.AILength)
	if !ok && cfg.Away.AILength != "" {
		slog.Warn("config: unknown aiLength, using medium", "value", cfg.Away.AILength)
	}
	return away.NewState(away.Options{
		DefaultMessage: cfg.Away.DefaultMessage,
		GroupReplies:   cfg.Away.GroupReplies,
		AIEnabled:      cfg.Away.AIEnabled,
		AILength:       length,
	})
}

func newProcessor(cfg *config.Config, state *away.State, clock away.Clock) *commands.Processor {
	return commands.NewProcessor(state, clock, cfg.Away.CommandPrefix)
}

func newProvider(cfg *config.Config) *providers.Provider {
	p := providers.New(cfg.ProviderParams())
	if !cfg.HasAPIKey() {
		slog.Warn("provider: no API key configured, AI commands will fail",
			"provider", p.Name(), "config", config.ConfigPath())
	}
	return p
}

func newImageStore(cfg *config.Config) (*media.Store, error) {
	s, err := media.NewStore(cfg.ImagesPath(), cfg.MaxImages)
	if err != nil {
		return nil, fmt.Errorf("image store: %w", err)
	}
	return s, nil
}

func newChannelManager(cfg *config.Config, b *bus.MessageBus) *channels.Manager {
	return channels.NewManager(cfg, b)
}

func newDispatcher(
	cfg *config.Config,
	state *away.State,
	clock away.Clock,
	proc *commands.Processor,
	p *providers.Provider,
	mgr *channels.Manager,
	store *media.Store,
) *dispatch.Dispatcher {
	deps := dispatch.Deps{
		State:     state,
		Clock:     clock,
		Processor: proc,
		Images:    mgr,
		Store:     store,
		Workers:   cfg.Away.AIWorkers,
	}
	if cfg.HasAPIKey() {
		deps.AI = p
	}
	return dispatch.New(deps)
}

func newScheduler(cfg *config.Config, state *away.State, clock away.Clock) (*schedule.Service, error) {
	svc := schedule.NewService(state, clock)
	for _, sc := range cfg.Schedules {
		if err := svc.Add(sc); err != nil {
			return nil, err
		}
	}
	return svc, nil
}

func newHeartbeat(cfg *config.Config, state *away.State, b *bus.MessageBus, clock away.Clock, mgr *channels.Manager) *heartbeat.Service {
	if !cfg.Away.EndNotice {
		return nil
	}
	names := mgr.EnabledChannels()
	chans := make([]bus.Channel, len(names))
	for i, n := range names {
		chans[i] = bus.Channel(n)
	}
	return heartbeat.NewService(state, b, clock, chans, heartbeat.DefaultInterval)
}
