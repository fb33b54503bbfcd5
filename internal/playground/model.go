// Package playground is an interactive terminal sandbox for one diagram.
//
// Entities are drawn through the component registry. Keys and mouse events
// are translated into input events on the diagram's bus, so every edit goes
// through the registered behaviours exactly as it would in any other UI.
package playground

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/diagramkit/internal/calc"
	"github.com/zjrosen/diagramkit/internal/codec"
	"github.com/zjrosen/diagramkit/internal/config"
	"github.com/zjrosen/diagramkit/internal/events"
	"github.com/zjrosen/diagramkit/internal/flags"
	"github.com/zjrosen/diagramkit/internal/input"
	"github.com/zjrosen/diagramkit/internal/keys"
	"github.com/zjrosen/diagramkit/internal/log"
	"github.com/zjrosen/diagramkit/internal/model"
	"github.com/zjrosen/diagramkit/internal/registry"
	"github.com/zjrosen/diagramkit/internal/service"
	"github.com/zjrosen/diagramkit/internal/watcher"
)

const (
	sidebarWidth   = 30
	activityHeight = 7
	maxActivity    = 200
	saveMute       = 500 * time.Millisecond
)

var newEntitySize = model.Size{Width: 120, Height: 60}

// activityCategories feed the activity pane. Bus entries, one per publish,
// would drown everything else.
var activityCategories = []log.Category{
	log.CatModel, log.CatBehaviour, log.CatRegistry, log.CatCodec,
	log.CatStore, log.CatConfig, log.CatWatcher, log.CatUI, log.CatCache,
}

// Options configures a playground session.
type Options struct {
	// Path is the diagram file. A missing file starts from the sample
	// diagram and is created on the first save. Empty disables saving.
	Path string

	// ConfigPath receives behaviour toggles. Empty keeps them in memory.
	ConfigPath string

	Config     config.Config
	Flags      *flags.Registry
	Components registry.Provider
}

type fileChangedMsg struct{}

type entityKind int

const (
	kindNode entityKind = iota
	kindNumber
	kindOperator
)

// Model is the playground state.
type Model struct {
	opts  Options
	codec codec.Codec
	svc   *service.DiagramService

	keys     keys.KeyMap
	help     help.Model
	activity viewport.Model
	entries  []string
	zones    *zone.Manager

	ctx     context.Context
	cancel  context.CancelFunc
	watcher *watcher.Watcher
	changes <-chan struct{}
	logs    *log.LogListener

	width, height    int
	cursorX, cursorY int
	grabbing         bool
	focus            int
	showSidebar      bool
	showActivity     bool
	showHelp         bool
	status           string
}

// New loads the diagram at opts.Path, registers the default behaviours and
// starts watching the file when configured to.
func New(opts Options) (Model, error) {
	if opts.Components == nil {
		r, err := DefaultComponents()
		if err != nil {
			return Model{}, fmt.Errorf("building components: %w", err)
		}
		opts.Components = r
	}
	pg := &opts.Config.Playground
	if pg.CellWidth <= 0 || pg.CellHeight <= 0 {
		defaults := config.Defaults().Playground
		pg.CellWidth, pg.CellHeight = defaults.CellWidth, defaults.CellHeight
	}

	m := Model{
		opts:         opts,
		keys:         keys.Playground,
		help:         help.New(),
		activity:     viewport.New(0, activityHeight-2),
		zones:        zone.New(),
		focus:        -1,
		showSidebar:  true,
		showActivity: opts.Config.Playground.ShowActivity,
	}
	if opts.Path != "" {
		format, err := codec.FormatFromPath(opts.Path)
		if err != nil {
			return Model{}, err
		}
		if m.codec, err = codec.ForFormat(format); err != nil {
			return Model{}, err
		}
	}

	svc, err := m.load(nil)
	if err != nil {
		return Model{}, err
	}
	m.svc = svc

	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.logs = log.NewListener(m.ctx, activityCategories...)

	if opts.Path != "" && opts.Config.Playground.Watch {
		m.startWatcher()
	}
	return m, nil
}

func (m *Model) startWatcher() {
	w, err := watcher.New(watcher.Config{Path: m.opts.Path, Debounce: m.opts.Config.Playground.Debounce})
	if err != nil {
		log.ErrorErr(log.CatWatcher, "watcher unavailable", err, "path", m.opts.Path)
		return
	}
	ch, err := w.Start()
	if err != nil {
		log.ErrorErr(log.CatWatcher, "watcher unavailable", err, "path", m.opts.Path)
		_ = w.Stop()
		return
	}
	m.watcher, m.changes = w, ch
}

// load builds a service over the file at Path, or over the sample diagram
// when there is no file. enabled carries behaviour toggles across reloads.
func (m Model) load(enabled map[string]bool) (*service.DiagramService, error) {
	var d *model.Diagram
	if m.opts.Path != "" {
		f, err := os.Open(m.opts.Path)
		switch {
		case err == nil:
			d, err = m.codec.Decode(f, events.NewAggregator())
			_ = f.Close()
			if err != nil {
				return nil, fmt.Errorf("decoding %s: %w", m.opts.Path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
			log.Info(log.CatUI, "diagram file missing, starting from sample", "path", m.opts.Path)
		default:
			return nil, fmt.Errorf("opening %s: %w", m.opts.Path, err)
		}
	}

	svc := service.New(d, m.opts.Components)
	if err := svc.RegisterDefaults(m.opts.Config.Behaviours, m.opts.Flags); err != nil {
		svc.Dispose()
		return nil, err
	}
	for _, name := range service.BehaviourNames {
		if on, ok := enabled[name]; ok {
			if o, registered := svc.BehaviourOptions(name); registered {
				o.SetEnabled(on)
			}
		}
	}
	if d == nil {
		if err := svc.PopulateSample(); err != nil {
			svc.Dispose()
			return nil, fmt.Errorf("building sample diagram: %w", err)
		}
	} else {
		svc.Recalculate()
	}
	return svc, nil
}

// Service exposes the diagram service driving the playground.
func (m Model) Service() *service.DiagramService { return m.svc }

// Close stops the watcher and log listener and disposes the diagram.
func (m Model) Close() error {
	if m.cancel != nil {
		m.cancel()
	}
	m.zones.Close()
	var err error
	if m.watcher != nil {
		err = m.watcher.Stop()
	}
	m.svc.Dispose()
	return err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.EnableMouseCellMotion}
	if m.changes != nil {
		cmds = append(cmds, waitForChange(m.changes))
	}
	if m.logs != nil {
		cmds = append(cmds, m.logs.Listen())
	}
	return tea.Batch(cmds...)
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return fileChangedMsg{}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case fileChangedMsg:
		m.reload("reloaded after file change")
		return m, waitForChange(m.changes)

	case log.LogEvent:
		m.appendActivity(msg.Payload)
		if m.logs == nil {
			return m, nil
		}
		return m, m.logs.Listen()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit
	case key.Matches(msg, k.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		m.resize()

	case key.Matches(msg, k.Up):
		m.moveCursor(0, -1)
	case key.Matches(msg, k.Down):
		m.moveCursor(0, 1)
	case key.Matches(msg, k.Left):
		m.moveCursor(-1, 0)
	case key.Matches(msg, k.Right):
		m.moveCursor(1, 0)
	case key.Matches(msg, k.Grab):
		m.grab()
	case key.Matches(msg, k.NextEntity):
		m.cycleFocus(1)
	case key.Matches(msg, k.PrevEntity):
		m.cycleFocus(-1)
	case key.Matches(msg, k.ZoomIn):
		m.publishWheel(-1)
	case key.Matches(msg, k.ZoomOut):
		m.publishWheel(1)

	case key.Matches(msg, k.SelectAll):
		publish(&m, input.KeyDown{Key: "a", Modifiers: input.Modifiers{Ctrl: true}})
	case key.Matches(msg, k.Delete):
		name := "delete"
		if msg.String() == "backspace" {
			name = "backspace"
		}
		publish(&m, input.KeyDown{Key: name})
	case key.Matches(msg, k.Escape):
		publish(&m, input.KeyDown{Key: "esc"})

	case key.Matches(msg, k.AddNode):
		m.addEntity(kindNode)
	case key.Matches(msg, k.AddNumber):
		m.addEntity(kindNumber)
	case key.Matches(msg, k.AddOperator):
		m.addEntity(kindOperator)
	case key.Matches(msg, k.Increment):
		m.nudgeSelected(1)
	case key.Matches(msg, k.Decrement):
		m.nudgeSelected(-1)

	case key.Matches(msg, k.Save):
		m.save()
	case key.Matches(msg, k.Reload):
		m.reload("reloaded")
	case key.Matches(msg, k.ToggleSidebar):
		m.showSidebar = !m.showSidebar
		m.resize()
	case key.Matches(msg, k.ToggleActivity):
		m.showActivity = !m.showActivity
		m.resize()
	case key.Matches(msg, k.Behaviours):
		m.toggleBehaviour(msg.String())
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		for _, c := range m.svc.Diagram().AllContainers() {
			if z := m.zones.Get(entityZone(c.ID())); z != nil && z.InBounds(msg) {
				m.focusEntity(c)
				return
			}
		}
	}

	w, h := m.canvasSize()
	if msg.X < 0 || msg.Y < 0 || msg.X >= w || msg.Y >= h {
		return
	}
	m.cursorX, m.cursorY = msg.X, msg.Y
	client := m.cursorClient()
	target := m.hit(client)
	mods := input.Modifiers{Ctrl: msg.Ctrl, Shift: msg.Shift, Alt: msg.Alt}

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		publish(m, input.Wheel{Client: client, DeltaY: -1, Modifiers: mods})
	case msg.Button == tea.MouseButtonWheelDown:
		publish(m, input.Wheel{Client: client, DeltaY: 1, Modifiers: mods})
	case msg.Action == tea.MouseActionPress:
		publish(m, input.PointerDown{Target: target, Client: client, Button: buttonOf(msg.Button), Modifiers: mods})
	case msg.Action == tea.MouseActionMotion:
		publish(m, input.PointerMove{Target: target, Client: client, Modifiers: mods})
	case msg.Action == tea.MouseActionRelease:
		publish(m, input.PointerUp{Target: target, Client: client, Button: buttonOf(msg.Button), Modifiers: mods})
	}
}

func buttonOf(b tea.MouseButton) input.Button {
	switch b {
	case tea.MouseButtonMiddle:
		return input.ButtonMiddle
	case tea.MouseButtonRight:
		return input.ButtonRight
	}
	return input.ButtonLeft
}

// publish sends an input event on the diagram's bus.
func publish[E any](m *Model, e E) {
	events.Publish(m.svc.Bus(), e)
}

func (m *Model) projection() projection {
	pg := m.opts.Config.Playground
	return projection{diagram: m.svc.Diagram(), cellW: pg.CellWidth, cellH: pg.CellHeight}
}

func (m *Model) cursorClient() model.Point {
	return m.projection().clientAt(m.cursorX, m.cursorY)
}

func (m *Model) hit(client model.Point) model.Entity {
	vp := m.projection()
	return hitTest(vp.diagram, vp.diagram.ToModel(client), vp.cellTolerance())
}

// canvasSize is the drawing area left after the sidebar, activity pane,
// status line and help.
func (m *Model) canvasSize() (int, int) {
	w := m.width
	if m.showSidebar {
		w -= sidebarWidth
	}
	h := m.height - 1 - lipgloss.Height(m.help.View(m.keys))
	if m.showActivity {
		h -= activityHeight
	}
	return max(w, 0), max(h, 0)
}

func (m *Model) resize() {
	w, h := m.canvasSize()
	pg := m.opts.Config.Playground
	m.svc.Diagram().SetSize(model.Size{Width: float64(w) * pg.CellWidth, Height: float64(h) * pg.CellHeight})
	m.activity.Width = m.width
	m.activity.Height = activityHeight - 2
	m.help.Width = m.width
	m.clampCursor()
}

func (m *Model) clampCursor() {
	w, h := m.canvasSize()
	m.cursorX = min(max(m.cursorX, 0), max(w-1, 0))
	m.cursorY = min(max(m.cursorY, 0), max(h-1, 0))
}

func (m *Model) moveCursor(dx, dy int) {
	m.cursorX += dx
	m.cursorY += dy
	m.clampCursor()
	if m.grabbing {
		client := m.cursorClient()
		publish(m, input.PointerMove{Target: m.hit(client), Client: client})
	}
}

// grab emulates a held left button: the first press is a pointer-down at
// the cursor, the second a pointer-up.
func (m *Model) grab() {
	client := m.cursorClient()
	target := m.hit(client)
	if !m.grabbing {
		publish(m, input.PointerDown{Target: target, Client: client, Button: input.ButtonLeft})
		m.grabbing = true
		return
	}
	publish(m, input.PointerUp{Target: target, Client: client, Button: input.ButtonLeft})
	m.grabbing = false
}

func (m *Model) publishWheel(deltaY float64) {
	publish(m, input.Wheel{Client: m.cursorClient(), DeltaY: deltaY})
}

func (m *Model) visibleContainers() []model.PortContainer {
	var out []model.PortContainer
	for _, c := range m.svc.Diagram().AllContainers() {
		if c.Visible() {
			out = append(out, c)
		}
	}
	return out
}

func (m *Model) cycleFocus(dir int) {
	containers := m.visibleContainers()
	if len(containers) == 0 {
		return
	}
	n := len(containers)
	m.focus = ((m.focus+dir)%n + n) % n
	m.focusEntity(containers[m.focus])
}

// focusEntity moves the cursor to c and clicks it.
func (m *Model) focusEntity(c model.PortContainer) {
	x, y := m.projection().toCell(c.Bounds().Center())
	m.cursorX, m.cursorY = x, y
	m.clampCursor()
	client := m.cursorClient()
	publish(m, input.PointerDown{Target: c, Client: client, Button: input.ButtonLeft})
	publish(m, input.PointerUp{Target: c, Client: client, Button: input.ButtonLeft})
	m.grabbing = false
	m.status = "focused " + c.Title()
}

func (m *Model) addEntity(kind entityKind) {
	bus := m.svc.Bus()
	at := m.svc.Diagram().ToModel(m.cursorClient()).
		Sub(model.Point{X: newEntitySize.Width / 2, Y: newEntitySize.Height / 2})
	opts := []model.Option{model.WithPosition(at), model.WithSize(newEntitySize)}

	var n *model.Node
	var ports []*model.Port
	switch kind {
	case kindNumber:
		n = calc.NewNumber(bus, 0, append(opts, model.WithTitle("number"))...).Model()
	case kindOperator:
		n = calc.NewOperator(bus, calc.Add, append(opts, model.WithTitle("sum"))...).Model()
	default:
		n = model.NewNode(bus, append(opts, model.WithTitle("node"))...)
		ports = []*model.Port{model.NewPort(bus, model.AlignLeft), model.NewPort(bus, model.AlignRight)}
	}

	if err := m.svc.AddNode(n); err != nil {
		log.ErrorErr(log.CatUI, "add node failed", err)
		m.status = "add failed: " + err.Error()
		return
	}
	for _, p := range ports {
		if err := m.svc.AddPortTo(n, p); err != nil {
			log.ErrorErr(log.CatUI, "add port failed", err, "node", n.ID())
		}
	}
	m.status = "added " + n.Title()
}

// nudgeSelected changes the value of every selected number node.
func (m *Model) nudgeSelected(delta float64) {
	changed := 0
	for _, n := range m.svc.Diagram().AllNodes() {
		num, ok := n.Extension().(*calc.Number)
		if !ok || !n.Selected() {
			continue
		}
		num.SetValue(num.Value() + delta)
		changed++
	}
	if changed == 0 {
		m.status = "select a number node first"
		return
	}
	m.status = fmt.Sprintf("changed %d number(s)", changed)
}

func (m *Model) save() {
	if m.opts.Path == "" {
		m.status = "no file to save to"
		return
	}
	var buf bytes.Buffer
	if err := m.codec.Encode(m.svc.Diagram(), &buf); err != nil {
		log.ErrorErr(log.CatCodec, "encode failed", err, "path", m.opts.Path)
		m.status = "save failed: " + err.Error()
		return
	}
	if m.watcher != nil {
		m.watcher.Mute(saveMute)
	}
	if err := os.MkdirAll(filepath.Dir(m.opts.Path), 0o750); err != nil {
		m.status = "save failed: " + err.Error()
		return
	}
	if err := os.WriteFile(m.opts.Path, buf.Bytes(), 0o600); err != nil {
		log.ErrorErr(log.CatUI, "write failed", err, "path", m.opts.Path)
		m.status = "save failed: " + err.Error()
		return
	}
	log.Info(log.CatUI, "diagram saved", "path", m.opts.Path, "bytes", buf.Len())
	m.status = "saved " + filepath.Base(m.opts.Path)
}

// reload rebuilds the service from disk, keeping behaviour toggles. On
// failure the current diagram stays.
func (m *Model) reload(reason string) {
	enabled := make(map[string]bool)
	for _, name := range service.BehaviourNames {
		if o, ok := m.svc.BehaviourOptions(name); ok {
			enabled[name] = o.Enabled()
		}
	}
	svc, err := m.load(enabled)
	if err != nil {
		log.ErrorErr(log.CatUI, "reload failed", err, "path", m.opts.Path)
		m.status = "reload failed: " + err.Error()
		return
	}
	m.svc.Dispose()
	m.svc = svc
	m.grabbing = false
	m.focus = -1
	m.resize()
	m.status = reason
}

func (m *Model) toggleBehaviour(digit string) {
	i, ok := keys.BehaviourIndex(digit)
	if !ok || i >= len(service.BehaviourNames) {
		return
	}
	name := service.BehaviourNames[i]
	o, ok := m.svc.BehaviourOptions(name)
	if !ok {
		m.status = name + " is not registered"
		return
	}
	enabled := !o.Enabled()
	if err := m.svc.SetBehaviourEnabled(name, enabled); err != nil {
		m.status = err.Error()
		return
	}
	if m.opts.ConfigPath != "" {
		if err := config.SaveBehaviourEnabled(m.opts.ConfigPath, name, enabled); err != nil {
			log.ErrorErr(log.CatConfig, "persisting behaviour toggle failed", err, "behaviour", name)
		}
	}
	m.status = fmt.Sprintf("%s %s", name, onOff(enabled))
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func (m *Model) appendActivity(entry string) {
	m.entries = append(m.entries, entry)
	if len(m.entries) > maxActivity {
		m.entries = m.entries[len(m.entries)-maxActivity:]
	}
	m.activity.SetContent(activityContent(m.entries, m.width))
	m.activity.GotoBottom()
}
