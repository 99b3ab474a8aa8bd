// Package tui is the interactive planner: a grid of zone cards sharing one
// instant, with views to add zones, type times and read the key bindings.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/philtim/timeplanner/calendar"
	"github.com/philtim/timeplanner/editor"
	"github.com/philtim/timeplanner/geonames"
	"github.com/philtim/timeplanner/logging"
	"github.com/philtim/timeplanner/state"
)

// viewState represents the current view state
type viewState int

const (
	viewMain viewState = iota
	viewAdd
	viewEdit
	viewConfirm
	viewHelp
)

// searchPage is how many more search results "show more" reveals
const searchPage = 5

// tickMsg is sent every second to follow the wall clock
type tickMsg time.Time

// spinnerTickMsg is sent to update the spinner animation
type spinnerTickMsg time.Time

// geonamesReadyMsg is sent when the city database is ready
type geonamesReadyMsg struct{}

// geonamesErrorMsg is sent when the city database fails to load
type geonamesErrorMsg struct{ err error }

// copiedMsg reports the result of a clipboard write
type copiedMsg struct {
	what string
	err  error
}

// Options configures the program
type Options struct {
	Session *state.Session
	Zones   *geonames.Database
	Log     *logging.Logger
	// Event holds the title, duration and footer of exported events
	Event        calendar.Event
	ShareBaseURL string
	// TerminalTheme draws with colors that follow the terminal background
	// until the theme is toggled
	TerminalTheme bool
	Copy          func(string) error
	Now           func() time.Time
}

// model is the bubbletea model of the planner
type model struct {
	ctx     context.Context
	session *state.Session
	zones   *geonames.Database
	log     *logging.Logger
	keys    keyMap
	event   calendar.Event
	share   string
	copy    func(string) error
	now     func() time.Time

	terminalTheme bool

	// View state
	state    viewState
	viewport viewport.Model
	ready    bool
	width    int
	height   int
	quitting bool
	selected int
	flash    string
	flashErr bool

	// Spinner state
	spinnerFrame  int
	geonamesReady bool

	// Add mode state
	searchInput    textinput.Model
	searchResults  []geonames.Match
	selectedResult int
	shownResults   int

	// Edit mode state
	timeInput          textinput.Model
	field              *editor.Field
	selectedSuggestion int

	// Confirm mode state
	confirmMsg   string
	confirmIndex int
}

func newModel(ctx context.Context, opts Options) model {
	log := opts.Log
	if log == nil {
		log = logging.Nop()
	}
	copyFn := opts.Copy
	if copyFn == nil {
		copyFn = copyToClipboard
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	zones := opts.Zones
	if zones == nil {
		zones = geonames.NewDatabase(geonames.ListZoneIDs())
		zones.Disable()
	}

	si := textinput.New()
	si.Placeholder = "Search zone or city..."
	si.CharLimit = 50
	si.Width = 50

	ti := textinput.New()
	ti.Placeholder = "hh:mm AM/PM"
	ti.CharLimit = 8
	ti.Width = 12

	vp := viewport.New(0, 0)
	vp.KeyMap = viewport.KeyMap{
		PageDown: key.NewBinding(key.WithKeys("pgdown")),
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
	}

	return model{
		ctx:           ctx,
		session:       opts.Session,
		zones:         zones,
		log:           log,
		keys:          defaultKeyMap(),
		event:         opts.Event,
		share:         opts.ShareBaseURL,
		copy:          copyFn,
		now:           now,
		terminalTheme: opts.TerminalTheme,
		state:         viewMain,
		viewport:      vp,
		geonamesReady: zones.IsReady(),
		searchInput:   si,
		timeInput:     ti,
	}
}

// Init initializes the model
func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd()}
	if !m.geonamesReady {
		cmds = append(cmds, spinnerTickCmd(), checkGeoNamesCmd(m.zones))
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd := m.handleKeyPress(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Reserve space for the status and command bars
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 2
		m.ready = true

	case tickMsg:
		m.session.Dispatch(m.ctx, state.Tick{Now: time.Time(msg)})
		cmds = append(cmds, tickCmd())

	case spinnerTickMsg:
		m.spinnerFrame = (m.spinnerFrame + 1) % len(spinnerFrames)
		if !m.geonamesReady {
			cmds = append(cmds, spinnerTickCmd())
		}

	case geonamesReadyMsg:
		m.geonamesReady = true

	case geonamesErrorMsg:
		m.geonamesReady = true
		m.log.WithError(msg.err).Warnw("city database unavailable")
		m.setFlash("City search unavailable: "+msg.err.Error(), true)

	case copiedMsg:
		if msg.err != nil {
			m.log.WithError(msg.err).Warnw("clipboard write failed", "what", msg.what)
			m.setFlash("Could not copy "+msg.what, true)
		} else {
			m.setFlash("Copied "+msg.what+" to clipboard", false)
		}

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.clampSelection()
	return m, tea.Batch(cmds...)
}

// handleKeyPress handles keyboard input based on current view state
func (m *model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	switch m.state {
	case viewMain:
		return m.handleMainKeys(msg)
	case viewAdd:
		return m.handleAddKeys(msg)
	case viewEdit:
		return m.handleEditKeys(msg)
	case viewConfirm:
		return m.handleConfirmKeys(msg)
	case viewHelp:
		return m.handleHelpKeys(msg)
	}
	return nil
}

// handleMainKeys handles keys in main view
func (m *model) handleMainKeys(msg tea.KeyMsg) tea.Cmd {
	st := m.session.State()
	zone, hasZone := m.selectedZone()

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, m.keys.Down):
		if m.selected < len(st.Zones)-1 {
			m.selected++
		}

	case key.Matches(msg, m.keys.Earlier), key.Matches(msg, m.keys.Later),
		key.Matches(msg, m.keys.EarlierHour), key.Matches(msg, m.keys.LaterHour):
		if !hasZone {
			return nil
		}
		step := 1
		if key.Matches(msg, m.keys.EarlierHour) || key.Matches(msg, m.keys.LaterHour) {
			step = 4
		}
		if key.Matches(msg, m.keys.Earlier) || key.Matches(msg, m.keys.EarlierHour) {
			step = -step
		}
		loc, err := time.LoadLocation(zone)
		if err != nil {
			return nil
		}
		index := editor.SliderIndex(st.Instant.Time(), loc) + step
		if out := m.dispatch(state.MoveSlider{Zone: zone, Index: index}); out.Rejected {
			m.setFlash("The slider stays within the day, use [ and ] to change it", true)
		}

	case key.Matches(msg, m.keys.PrevDay), key.Matches(msg, m.keys.NextDay):
		if !hasZone {
			return nil
		}
		days := 1
		if key.Matches(msg, m.keys.PrevDay) {
			days = -1
		}
		m.dispatch(state.ShiftDays{Zone: zone, Days: days})

	case key.Matches(msg, m.keys.Edit):
		if !hasZone {
			return nil
		}
		field, err := editor.NewField(zone, st.Instant.Time())
		if err != nil {
			m.setFlash(err.Error(), true)
			return nil
		}
		field.Focus()
		m.field = field
		m.selectedSuggestion = -1
		m.timeInput.SetValue(field.Text)
		m.timeInput.CursorEnd()
		m.state = viewEdit
		return m.timeInput.Focus()

	case key.Matches(msg, m.keys.Add):
		m.state = viewAdd
		m.searchInput.Reset()
		m.searchResults = nil
		m.selectedResult = 0
		m.shownResults = 0
		return m.searchInput.Focus()

	case key.Matches(msg, m.keys.Remove):
		if !hasZone {
			return nil
		}
		m.state = viewConfirm
		m.confirmIndex = m.selected
		m.confirmMsg = fmt.Sprintf("Remove '%s'? (y/n)", zone)

	case key.Matches(msg, m.keys.MoveUp), key.Matches(msg, m.keys.MoveDown):
		if !hasZone {
			return nil
		}
		to := m.selected + 1
		if key.Matches(msg, m.keys.MoveUp) {
			to = m.selected - 1
		}
		if to < 0 || to >= len(st.Zones) {
			return nil
		}
		if m.dispatch(state.ReorderZone{From: m.selected, To: to}).ListChanged {
			m.selected = to
		}

	case key.Matches(msg, m.keys.Reverse):
		if m.dispatch(state.ReverseZones{}).ListChanged {
			m.selected = len(st.Zones) - 1 - m.selected
		}

	case key.Matches(msg, m.keys.Sort):
		if m.dispatch(state.SortZones{}).ListChanged {
			m.followZone(zone)
		}

	case key.Matches(msg, m.keys.Undo):
		if m.dispatch(state.Undo{}).Rejected {
			m.setFlash("Nothing to undo", true)
		} else {
			m.followZone(zone)
		}

	case key.Matches(msg, m.keys.Redo):
		if m.dispatch(state.Redo{}).Rejected {
			m.setFlash("Nothing to redo", true)
		} else {
			m.followZone(zone)
		}

	case key.Matches(msg, m.keys.Now):
		m.dispatch(state.ResetToNow{Now: m.now()})

	case key.Matches(msg, m.keys.Theme):
		m.terminalTheme = false
		m.dispatch(state.ToggleTheme{})

	case key.Matches(msg, m.keys.CopyCalendar):
		ev := m.event
		ev.Start = st.Instant.Time()
		ev.Zones = st.Zones
		return m.copyCmd("calendar link", calendar.EventURL(ev))

	case key.Matches(msg, m.keys.CopyShare):
		return m.copyCmd("share link", calendar.ShareLink(m.share, st.Instant.Time(), st.Zones))

	case key.Matches(msg, m.keys.Help):
		m.state = viewHelp

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}

	return nil
}

// handleAddKeys handles keys in add view
func (m *model) handleAddKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.state = viewMain
		m.searchInput.Blur()
		return nil

	case "up":
		if m.selectedResult > 0 {
			m.selectedResult--
		}
		return nil

	case "down":
		if m.selectedResult < m.shownResults-1 {
			m.selectedResult++
		}
		return nil

	case "tab":
		m.shownResults = min(m.shownResults+searchPage, len(m.searchResults))
		return nil

	case "enter":
		if m.selectedResult >= m.shownResults {
			return nil
		}
		match := m.searchResults[m.selectedResult]
		if m.dispatch(state.AddZone{Zone: match.Zone}).ListChanged {
			m.selected = len(m.session.State().Zones) - 1
			m.setFlash("Added "+match.Zone, false)
		} else {
			m.setFlash(match.Zone+" is already in the list", true)
		}
		m.state = viewMain
		m.searchInput.Blur()
		return nil
	}

	var cmd tea.Cmd
	before := m.searchInput.Value()
	m.searchInput, cmd = m.searchInput.Update(msg)
	if m.searchInput.Value() != before {
		m.refreshSearch()
	}
	return cmd
}

// refreshSearch recomputes the results for the current query
func (m *model) refreshSearch() {
	m.searchResults = m.zones.Search(m.searchInput.Value(), 0)
	m.shownResults = min(searchPage, len(m.searchResults))
	m.selectedResult = 0
}

// handleEditKeys handles keys in the typed time view
func (m *model) handleEditKeys(msg tea.KeyMsg) tea.Cmd {
	instant := m.session.State().Instant.Time()

	switch msg.String() {
	case "esc":
		m.field.Sync(instant)
		m.closeEdit()
		return nil

	case "up":
		if m.selectedSuggestion >= 0 {
			m.selectedSuggestion--
		}
		return nil

	case "down":
		if m.selectedSuggestion < len(m.field.Suggestions)-1 {
			m.selectedSuggestion++
		}
		return nil

	case "enter":
		var next time.Time
		var ok bool
		if m.selectedSuggestion >= 0 {
			next, ok = m.field.Pick(m.selectedSuggestion, instant)
			m.timeInput.SetValue(m.field.Text)
		} else {
			next, ok = m.field.Commit(instant)
		}
		if !ok {
			m.selectedSuggestion = -1
			return nil
		}
		m.dispatch(state.SetInstant{At: next})
		m.closeEdit()
		return nil
	}

	var cmd tea.Cmd
	before := m.timeInput.Value()
	m.timeInput, cmd = m.timeInput.Update(msg)
	if v := m.timeInput.Value(); v != before {
		m.field.Type(v)
		m.selectedSuggestion = -1
	}
	return cmd
}

func (m *model) closeEdit() {
	m.state = viewMain
	m.timeInput.Blur()
	m.field = nil
}

// handleConfirmKeys handles keys in confirm view
func (m *model) handleConfirmKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y":
		m.dispatch(state.RemoveZone{Index: m.confirmIndex})
		m.state = viewMain

	case "n", "esc":
		m.state = viewMain
	}

	return nil
}

// handleHelpKeys handles keys in help view
func (m *model) handleHelpKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "?", "esc", "q":
		m.state = viewMain
	case "ctrl+c":
		m.quitting = true
		return tea.Quit
	}
	return nil
}

func (m *model) dispatch(a state.Action) state.Outcome {
	m.flash = ""
	return m.session.Dispatch(m.ctx, a)
}

func (m *model) setFlash(msg string, isErr bool) {
	m.flash = msg
	m.flashErr = isErr
}

func (m model) selectedZone() (string, bool) {
	zones := m.session.State().Zones
	if m.selected < 0 || m.selected >= len(zones) {
		return "", false
	}
	return zones[m.selected], true
}

// followZone keeps the selection on zone after the list changed
func (m *model) followZone(zone string) {
	if i := m.session.State().Zones.IndexOf(zone); i >= 0 {
		m.selected = i
	}
}

func (m *model) clampSelection() {
	n := len(m.session.State().Zones)
	if m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m model) copyCmd(what, text string) tea.Cmd {
	copyFn := m.copy
	return func() tea.Msg {
		return copiedMsg{what: what, err: copyFn(text)}
	}
}

// spinnerFrames are the characters used for the loading animation
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// tickCmd returns a command that sends a tick message every second
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// spinnerTickCmd returns a command that sends a spinner tick message
func spinnerTickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}

// checkGeoNamesCmd polls the city database until it is ready or failed
func checkGeoNamesCmd(db *geonames.Database) tea.Cmd {
	return func() tea.Msg {
		for i := 0; i < 3000; i++ { // up to 5 minutes
			time.Sleep(100 * time.Millisecond)
			if err := db.GetError(); err != nil {
				return geonamesErrorMsg{err: err}
			}
			if db.IsReady() {
				return geonamesReadyMsg{}
			}
		}
		return geonamesErrorMsg{err: fmt.Errorf("timeout waiting for the city database")}
	}
}

// Run starts the interactive program and blocks until it exits
func Run(ctx context.Context, opts Options) error {
	applyColorProfile()
	p := tea.NewProgram(newModel(ctx, opts), tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
