package tui

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"podbase-blog/blogpage"
	"podbase-blog/cmd/internal/trace"
	"podbase-blog/seo"
)

// pager is the part of *blogpage.Page the terminal drives.
type pager interface {
	Init(ctx context.Context) error
	SetQuery(query string)
	SearchPosts()
	FilterPosts(ctx context.Context) error
	SelectCategory(ctx context.Context, category string) error
	NextPage(ctx context.Context) error
	PrevPage(ctx context.Context) error
	View() blogpage.View
	Close()
}

type mode int

const (
	modeNormal mode = iota
	modeSearch
)

// App hosts a blog page. Every page call that can block or notify observers runs
// inside a tea.Cmd; observer messages reach Update through the program.
type App struct {
	ctx  context.Context
	page pager

	view   blogpage.View
	meta   seo.PageMeta
	mode   mode
	cursor int
	err    error

	width  int
	height int

	searchInput textinput.Model
	spinner     spinner.Model
}

func NewApp(ctx context.Context, page pager) *App {
	ti := textinput.New()
	ti.Placeholder = "Search posts..."
	ti.Prompt = searchPromptStyle.Render("/ ")
	ti.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	return &App{
		ctx:         ctx,
		page:        page,
		view:        page.View(),
		searchInput: ti,
		spinner:     sp,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.pageCmd("init", a.page.Init), a.spinner.Tick)
}

// pageCmd runs fn off the update loop as its own trace flow named op.
func (a *App) pageCmd(op string, fn func(context.Context) error) tea.Cmd {
	ctx := trace.Start(a.ctx, op)
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn(ctx)}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case viewMsg:
		a.view = msg.view
		if a.cursor >= len(a.view.Posts) {
			a.cursor = max(0, len(a.view.Posts)-1)
		}
		return a, nil

	case metaMsg:
		a.meta = msg.meta
		return a, tea.SetWindowTitle(msg.meta.Title)

	case opDoneMsg:
		if msg.err != nil && !errors.Is(msg.err, blogpage.ErrSuperseded) && !errors.Is(msg.err, blogpage.ErrClosed) {
			a.err = msg.err
		} else if msg.err == nil {
			a.err = nil
		}
		a.view = a.page.View()
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		if a.mode == modeSearch {
			return a.handleSearchKey(msg)
		}
		return a.handleKey(msg)
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		a.page.Close()
		return a, tea.Quit

	case "/":
		a.mode = modeSearch
		a.searchInput.SetValue(a.view.SearchQuery)
		a.searchInput.CursorEnd()
		return a, a.searchInput.Focus()

	case "tab":
		return a, a.selectCategory(1)
	case "shift+tab":
		return a, a.selectCategory(-1)

	case "right", "l", "n":
		return a, a.pageCmd("next_page", a.page.NextPage)
	case "left", "h", "p":
		return a, a.pageCmd("prev_page", a.page.PrevPage)

	case "down", "j":
		if a.cursor < len(a.view.Posts)-1 {
			a.cursor++
		}
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}

	case "r":
		return a, a.pageCmd("filter", a.page.FilterPosts)
	}
	return a, nil
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		a.page.Close()
		return a, tea.Quit
	case "esc", "enter":
		a.mode = modeNormal
		a.searchInput.Blur()
		return a, nil
	}

	before := a.searchInput.Value()
	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	after := a.searchInput.Value()
	if after == before {
		return a, cmd
	}

	// 입력마다 검색어를 저장하고 디바운스된 검색을 다시 예약한다.
	a.page.SetQuery(after)
	a.view.SearchQuery = after
	search := func() tea.Msg {
		a.page.SearchPosts()
		return nil
	}
	return a, tea.Batch(cmd, search)
}

func (a *App) selectCategory(step int) tea.Cmd {
	choices := a.view.CategoryChoices()
	if len(choices) <= 1 {
		return nil
	}
	idx := 0
	for i, c := range choices {
		if c == a.view.SelectedCategory {
			idx = i
			break
		}
	}
	next := choices[(idx+step+len(choices))%len(choices)]
	return a.pageCmd("select_category", func(ctx context.Context) error {
		return a.page.SelectCategory(ctx, next)
	})
}

// relay forwards page notifications to the running program.
// Messages sent before the program is attached are dropped.
type relay struct {
	mu   sync.RWMutex
	prog *tea.Program
}

func (r *relay) attach(p *tea.Program) {
	r.mu.Lock()
	r.prog = p
	r.mu.Unlock()
}

func (r *relay) send(msg tea.Msg) {
	r.mu.RLock()
	p := r.prog
	r.mu.RUnlock()
	if p != nil {
		p.Send(msg)
	}
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Service     blogpage.QueryService
	Meta        seo.MetaService
	PageOptions []blogpage.Option
}

// Run builds the blog page, hosts it until the user quits, and always closes it.
func Run(ctx context.Context, opts RunOpts) error {
	r := &relay{}

	meta := seo.Multi{
		opts.Meta,
		seo.MetaFunc(func(_ context.Context, m seo.PageMeta) { r.send(metaMsg{meta: m}) }),
	}
	pageOpts := append([]blogpage.Option{}, opts.PageOptions...)
	pageOpts = append(pageOpts, blogpage.WithObserver(func(v blogpage.View) { r.send(viewMsg{view: v}) }))

	page := blogpage.New(opts.Service, meta, pageOpts...)
	defer page.Close()

	p := tea.NewProgram(NewApp(ctx, page), tea.WithAltScreen(), tea.WithContext(ctx))
	r.attach(p)

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
