// Package recommend provides the query and answer view for the TUI.
package recommend

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/animerec/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/animerec/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/animerec/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/animerec/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/animerec/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/animerec/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/animerec/internal/core/domain"
	"github.com/custodia-labs/animerec/internal/core/ports/driving"
)

// View asks for a query, shows the generated answer in a scrollable
// viewport and, on demand, the catalog chunks it was grounded in.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QueryInput
	answer    viewport.Model
	spinner   spinner.Model
	sources   *list.SourceList
	statusbar *status.Bar

	service driving.RecommendationService
	ctx     context.Context

	width       int
	height      int
	ready       bool
	thinking    bool
	focusInput  bool
	showSources bool
	result      *domain.Recommendation
	err         error
}

// NewView creates a new recommend view.
func NewView(s *styles.Styles, km *keymap.KeyMap, service driving.RecommendationService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = s.Title

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewQueryInput(s),
		answer:     viewport.New(80, 10),
		spinner:    sp,
		sources:    list.NewSourceList(s),
		statusbar:  status.NewBar(s, km),
		service:    service,
		ctx:        context.Background(),
		width:      80,
		height:     24,
		focusInput: true,
	}
}

// WithContext sets the context used for recommendation calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init starts the input cursor.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the recommend view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)

	case messages.RecommendCompleted:
		v.handleCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil

	case spinner.TickMsg:
		if !v.thinking {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			return v, v.submit()
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	if v.thinking {
		return v, nil
	}

	switch {
	case keymap.Matches(msg.String(), v.keymap.NewQuery):
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	case keymap.Matches(msg.String(), v.keymap.Sources):
		v.showSources = !v.showSources
		v.layout()
		return v, nil
	case keymap.Matches(msg.String(), v.keymap.Up):
		if v.showSources {
			v.sources.MoveUp()
		} else {
			v.answer.LineUp(1)
		}
		return v, nil
	case keymap.Matches(msg.String(), v.keymap.Down):
		if v.showSources {
			v.sources.MoveDown()
		} else {
			v.answer.LineDown(1)
		}
		return v, nil
	}

	var cmd tea.Cmd
	v.answer, cmd = v.answer.Update(msg)
	return v, cmd
}

// submit starts a recommendation for the current input.
func (v *View) submit() tea.Cmd {
	query := strings.TrimSpace(v.input.Value())
	if query == "" {
		return nil
	}

	v.thinking = true
	v.focusInput = false
	v.err = nil
	v.input.Blur()
	v.statusbar.SetState(status.StateThinking)

	return tea.Batch(v.spinner.Tick, v.recommend(query))
}

func (v *View) recommend(query string) tea.Cmd {
	service, ctx := v.service, v.ctx
	return func() tea.Msg {
		if service == nil {
			return messages.ErrorOccurred{Err: ErrNoRecommendationService}
		}
		rec, err := service.RecommendWithSources(ctx, query)
		return messages.RecommendCompleted{Recommendation: rec, Err: err}
	}
}

func (v *View) handleCompleted(msg messages.RecommendCompleted) {
	v.thinking = false
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.result = msg.Recommendation
	v.answer.SetContent(lipgloss.NewStyle().Width(max(v.width-4, 20)).Render(msg.Recommendation.Answer))
	v.answer.GotoTop()
	v.sources.SetSources(msg.Recommendation.Sources)
	v.statusbar.SetState(status.StateAnswered)
	v.statusbar.SetSourceCount(len(msg.Recommendation.Sources))
}

func (v *View) setError(err error) {
	v.thinking = false
	v.err = err
	v.focusInput = true
	v.input.Focus()
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the recommend view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{v.styles.Title.Render("animerec"), "", v.input.View(), ""}

	switch {
	case v.thinking:
		sections = append(sections, v.spinner.View()+v.styles.Muted.Render(" Looking through the catalog..."))
	case v.err != nil:
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
	case v.result != nil:
		sections = append(sections, v.styles.Answer.Render(v.answer.View()))
		if v.showSources {
			sections = append(sections, "", v.sources.View())
		}
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.layout()
}

// layout splits the space below the input between answer and sources.
func (v *View) layout() {
	body := max(v.height-9, 3)
	v.answer.Width = max(v.width-2, 20)
	if v.showSources {
		v.answer.Height = max(body/2, 3)
		v.sources.SetDimensions(v.width, body-v.answer.Height)
		return
	}
	v.answer.Height = body
}

// Query returns the current query text.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the query text.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Result returns the last recommendation, if any.
func (v *View) Result() *domain.Recommendation {
	return v.result
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Thinking reports whether a recommendation is in flight.
func (v *View) Thinking() bool {
	return v.thinking
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// SourcesVisible reports whether the source list is shown.
func (v *View) SourcesVisible() bool {
	return v.showSources
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Reset returns the view to an empty query.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Focus()
	v.input.SetValue("")
	v.result = nil
	v.err = nil
	v.showSources = false
	v.sources.SetSources(nil)
	v.statusbar.Clear()
}
