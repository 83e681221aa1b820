package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rashed-dev/relic/internal/identity"
	"github.com/rashed-dev/relic/internal/models"
	"github.com/rashed-dev/relic/internal/store"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	BrowseView ViewState = iota
	DetailView
	ConfirmDeleteView
)

// viewCycle is the order the tab key walks through collection views.
var viewCycle = []store.ViewKind{store.ViewAll, store.ViewMine, store.ViewLiked, store.ViewTop}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	resources *store.Store
	sessions  *identity.SessionStore
	width     int
	height    int
	cycleIdx  int
	browse    list.Model
	selected  *models.Artifact
	status    string
	err       error
	help      help.Model
	keys      keyMap
}

type artifactsLoadedMsg struct {
	kind      store.ViewKind
	artifacts []models.Artifact
	err       error
}

type likeDoneMsg struct {
	id    string
	likes int
	err   error
}

type deleteDoneMsg struct {
	id  string
	err error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, resources *store.Store, sessions *identity.SessionStore) *Model {
	return &Model{
		ctx:       ctx,
		view:      BrowseView,
		resources: resources,
		sessions:  sessions,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init initializes the TUI by loading the full artifact collection.
func (m *Model) Init() tea.Cmd {
	return m.loadView(store.ViewAll)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.browse.Width() == 0 {
			m.browse.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case BrowseView:
			return m.handleBrowseKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case ConfirmDeleteView:
			return m.handleConfirmDeleteKeys(msg)
		}

	case artifactsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		items := make([]list.Item, len(msg.artifacts))
		for i, artifact := range msg.artifacts {
			items[i] = artifactItem{artifact: artifact}
		}
		m.browse = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.browse.Title = viewTitle(msg.kind)
		m.browse.SetSize(m.width-4, m.height-8)
		return m, nil

	case likeDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("like failed: %v", msg.err)
			return m, nil
		}
		m.status = fmt.Sprintf("liked (%d total)", msg.likes)
		return m, m.reloadArtifacts()

	case deleteDoneMsg:
		m.view = BrowseView
		m.selected = nil
		if msg.err != nil {
			m.status = fmt.Sprintf("delete failed: %v", msg.err)
			return m, nil
		}
		m.status = "artifact deleted"
		return m, m.reloadArtifacts()
	}

	if m.view == BrowseView {
		var cmd tea.Cmd
		m.browse, cmd = m.browse.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress r to retry, q to quit", m.err))
	}

	switch m.view {
	case BrowseView:
		return m.renderBrowse()
	case DetailView:
		return m.renderDetail()
	case ConfirmDeleteView:
		return m.renderConfirmDelete()
	default:
		return ""
	}
}

func (m *Model) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab":
		m.cycleIdx = (m.cycleIdx + 1) % len(viewCycle)
		return m, m.loadView(viewCycle[m.cycleIdx])
	case "r":
		return m, m.reloadArtifacts()
	case "l":
		if item, ok := m.browse.SelectedItem().(artifactItem); ok {
			return m, m.likeArtifact(item.artifact.ID)
		}
	case "enter":
		if item, ok := m.browse.SelectedItem().(artifactItem); ok {
			artifact := item.artifact
			m.selected = &artifact
			m.view = DetailView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.browse, cmd = m.browse.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = BrowseView
		m.selected = nil
		return m, nil
	case "l":
		return m, m.likeArtifact(m.selected.ID)
	case "d":
		session := m.sessions.Session()
		if session.Identity != nil && m.selected.OwnedBy(session.Identity.SubjectID) {
			m.view = ConfirmDeleteView
		} else {
			m.status = "only the owner may delete this artifact"
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleConfirmDeleteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.view = DetailView
		return m, nil
	case "y":
		return m, m.deleteArtifact(m.selected.ID)
	}
	return m, nil
}

func (m *Model) loadView(kind store.ViewKind) tea.Cmd {
	return func() tea.Msg {
		err := m.resources.Load(m.ctx, store.Query{Kind: kind})
		return artifactsLoadedMsg{kind: kind, artifacts: m.resources.Artifacts(), err: err}
	}
}

func (m *Model) reloadArtifacts() tea.Cmd {
	q := m.resources.ActiveQuery()
	return func() tea.Msg {
		err := m.resources.Load(m.ctx, q)
		return artifactsLoadedMsg{kind: q.Kind, artifacts: m.resources.Artifacts(), err: err}
	}
}

func (m *Model) likeArtifact(id string) tea.Cmd {
	return func() tea.Msg {
		likes, err := m.resources.SubmitLike(m.ctx, id)
		return likeDoneMsg{id: id, likes: likes, err: err}
	}
}

func (m *Model) deleteArtifact(id string) tea.Cmd {
	return func() tea.Msg {
		err := m.resources.SubmitDelete(m.ctx, id)
		return deleteDoneMsg{id: id, err: err}
	}
}

func (m *Model) renderBrowse() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.like, m.keys.view, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	footer := helpView
	if m.status != "" {
		footer = fmt.Sprintf("%s\n%s", styles.warn.Render(m.status), helpView)
	}
	return fmt.Sprintf("%s\n\n%s", m.browse.View(), footer)
}

func (m *Model) renderDetail() string {
	if m.selected == nil {
		return ""
	}

	a := m.selected
	title := styles.title.Render(a.Name)
	info := fmt.Sprintf(
		"\nType: %s\nCreated: %s\nDiscovered: %s by %s\nLocation: %s\nAdded by: %s\nLikes: %d\n\n%s\n",
		a.Type, a.CreatedAt, a.DiscoveredAt, a.DiscoveredBy,
		a.PresentLocation, a.AddedBy.Name, a.LikeCount, a.HistoricalContext,
	)

	deleteKey := key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	helpKeys := []key.Binding{m.keys.like, deleteKey, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	footer := helpView
	if m.status != "" {
		footer = fmt.Sprintf("%s\n%s", styles.warn.Render(m.status), helpView)
	}
	return fmt.Sprintf("%s\n%s\n%s", title, info, footer)
}

func (m *Model) renderConfirmDelete() string {
	title := styles.title.Render(fmt.Sprintf("Delete '%s'?", m.selected.Name))
	warning := styles.warn.Render("This cannot be undone.")

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n\n%s", title, warning, helpView)
}

func viewTitle(kind store.ViewKind) string {
	switch kind {
	case store.ViewMine:
		return "My Artifacts"
	case store.ViewLiked:
		return "Liked Artifacts"
	case store.ViewTop:
		return "Top Liked Artifacts"
	default:
		return "All Artifacts"
	}
}
