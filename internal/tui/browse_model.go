package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/stockdesk/internal/api"
	"github.com/rshade/stockdesk/internal/cart"
	"github.com/rshade/stockdesk/internal/loader"
	"github.com/rshade/stockdesk/internal/logging"
	"github.com/rshade/stockdesk/internal/pagination"
	"github.com/rshade/stockdesk/internal/query"
)

// eventBuffer bounds the queue between background listeners and the program.
const eventBuffer = 64

// Record is a row the browser can display.
type Record interface {
	Row() []string
}

// CartLine is implemented by records that can be added to a cart.
type CartLine interface {
	LineItem() cart.LineItem
}

// BrowseOptions configures a BrowseModel.
type BrowseOptions struct {
	Title   string
	Columns []string
	// SortFields are cycled by the sort key, each ascending then descending.
	SortFields []string
	// HasCategory enables the company/supplier toggle.
	HasCategory bool
	MaxVisible  int
	Siblings    int
	// Cart receives rows added with the add key. Nil disables adding.
	Cart *cart.Cart
}

// Messages delivered from the query state, the loader and cart commands.
type (
	paramsMsg struct {
		params query.Params
	}

	resultMsg[T any] struct {
		result loader.Result[T]
	}

	cartMsg struct {
		item cart.LineItem
		err  error
	}
)

// BrowseModel is the Bubble Tea model for browsing one remote collection. Query
// changes flow from the keyboard into a query.State, which drives the loader; both
// report back through a channel that is drained as tea messages.
type BrowseModel[T Record] struct {
	ctx    context.Context
	opts   BrowseOptions
	state  *query.State
	loader *loader.Loader[T]

	events chan tea.Msg
	sendMu sync.Mutex
	unsubs []func()

	table     table.Model
	search    textinput.Model
	spinner   spinner.Model
	searching bool

	params  query.Params
	result  loader.Result[T]
	pages   pagination.PageModel
	sorts   []pagination.Sort
	sortIdx int

	status    string
	statusErr bool

	width    int
	height   int
	quitting bool
}

// NewBrowseModel creates a browser over state and l. The caller keeps ownership of
// both and closes them after the program exits.
func NewBrowseModel[T Record](
	ctx context.Context,
	state *query.State,
	l *loader.Loader[T],
	opts BrowseOptions,
) *BrowseModel[T] {
	if opts.MaxVisible < 1 {
		opts.MaxVisible = pagination.DefaultMaxVisible
	}

	m := &BrowseModel[T]{
		ctx:     ctx,
		opts:    opts,
		state:   state,
		loader:  l,
		events:  make(chan tea.Msg, eventBuffer),
		search:  newSearchInput(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		params:  state.Params(),
		sorts:   sortCycle(opts.SortFields),
		width:   defaultWidth,
		height:  defaultHeight,
	}
	m.search.SetValue(m.params.SearchText)
	m.sortIdx = indexOfSort(m.sorts, m.params.Sort)
	m.table = table.New(
		table.WithColumns(columnsFor(opts.Columns, m.width)),
		table.WithFocused(true),
		table.WithHeight(m.tableHeight()),
		table.WithStyles(tableStyles()),
	)
	return m
}

func newSearchInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "Search..."
	ti.Prompt = "/ "
	ti.CharLimit = searchInputCharLimit
	ti.Width = searchInputWidth
	return ti
}

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorBorder).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.Foreground(ColorHighlight).Background(ColorSelected)
	return s
}

// sortCycle returns no sort followed by each field ascending then descending.
func sortCycle(fields []string) []pagination.Sort {
	out := make([]pagination.Sort, 0, 1+2*len(fields)) //nolint:mnd // asc and desc per field
	out = append(out, pagination.Sort{})
	for _, f := range fields {
		out = append(out,
			pagination.Sort{Field: f, Order: pagination.SortOrderAsc},
			pagination.Sort{Field: f, Order: pagination.SortOrderDesc},
		)
	}
	return out
}

func indexOfSort(sorts []pagination.Sort, by pagination.Sort) int {
	for i, s := range sorts {
		if s == by {
			return i
		}
	}
	return 0
}

func columnsFor(headers []string, width int) []table.Column {
	if len(headers) == 0 {
		return nil
	}
	w := max((width-2*len(headers))/len(headers), len("QTY")+1)
	cols := make([]table.Column, len(headers))
	for i, h := range headers {
		cols[i] = table.Column{Title: h, Width: max(w, len(h))}
	}
	return cols
}

// Init subscribes to the query state and the loader and issues the first load.
func (m *BrowseModel[T]) Init() tea.Cmd {
	m.unsubs = append(m.unsubs,
		m.state.Subscribe(func(p query.Params) { m.send(paramsMsg{params: p}) }),
		m.loader.Subscribe(func(r loader.Result[T]) { m.send(resultMsg[T]{result: r}) }),
	)
	m.unsubs = append(m.unsubs, m.loader.Bind(m.ctx, m.state))
	return tea.Batch(m.waitForEvent(), m.spinner.Tick)
}

// send queues msg for the program without blocking. Listeners call it from Update
// itself, so when the queue is full it is collapsed to the newest params and the
// newest result, both of which supersede anything queued before them.
func (m *BrowseModel[T]) send(msg tea.Msg) {
	m.sendMu.Lock()
	defer m.sendMu.Unlock()

	select {
	case m.events <- msg:
		return
	default:
	}

	var latestParams, latestResult tea.Msg
	keep := func(queued tea.Msg) {
		switch queued.(type) {
		case paramsMsg:
			latestParams = queued
		case resultMsg[T]:
			latestResult = queued
		}
	}
drain:
	for {
		select {
		case queued := <-m.events:
			keep(queued)
		default:
			break drain
		}
	}
	keep(msg)

	for _, q := range []tea.Msg{latestParams, latestResult} {
		if q == nil {
			continue
		}
		select {
		case m.events <- q:
		default:
		}
	}
}

func (m *BrowseModel[T]) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-m.events:
			return msg
		case <-m.ctx.Done():
			return nil
		}
	}
}

// Close stops listening to the query state and the loader. It is idempotent.
func (m *BrowseModel[T]) Close() {
	for _, unsub := range m.unsubs {
		unsub()
	}
	m.unsubs = nil
}

// Update handles messages and updates the model state.
func (m *BrowseModel[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetColumns(columnsFor(m.opts.Columns, m.width))
		m.table.SetHeight(m.tableHeight())
		return m, nil

	case paramsMsg:
		m.params = msg.params
		return m, m.waitForEvent()

	case resultMsg[T]:
		m.applyResult(msg.result)
		return m, m.waitForEvent()

	case cartMsg:
		m.applyCart(msg)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.searching {
			return m.handleSearchKey(msg)
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *BrowseModel[T]) applyResult(r loader.Result[T]) {
	m.result = r
	if r.Loading {
		return
	}

	m.pages = pagination.ComputePageModel(
		r.TotalCount, r.Params.PageSize, r.Params.Page, m.opts.MaxVisible,
		pagination.WithSiblings(m.opts.Siblings),
	)

	rows := make([]table.Row, 0, len(r.Items))
	for _, it := range r.Items {
		rows = append(rows, it.Row())
	}
	m.table.SetRows(rows)
	if len(rows) > 0 && m.table.Cursor() >= len(rows) {
		m.table.SetCursor(len(rows) - 1)
	}

	if r.Err != nil {
		m.setStatus(api.Message(r.Err), true)
		return
	}

	// The result set shrank below the requested page; move to the last page.
	if m.pages.TotalPages > 0 && r.Params.Page > m.pages.TotalPages {
		m.state.SetPage(m.pages.TotalPages)
	}
}

func (m *BrowseModel[T]) applyCart(msg cartMsg) {
	if msg.err != nil {
		logging.FromContext(m.ctx).Warn().Ctx(m.ctx).
			Str("component", "tui").
			Str("operation", "add_to_cart").
			Err(msg.err).
			Msg("add to cart failed")
		m.setStatus(msg.err.Error(), true)
		return
	}
	m.setStatus(fmt.Sprintf("Added %s (qty %d) to %s", msg.item.Name, msg.item.Quantity, m.opts.Cart.Key()), false)
}

func (m *BrowseModel[T]) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m *BrowseModel[T]) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyCtrlC:
		return m.quit()
	case keyEnter:
		m.searching = false
		m.search.Blur()
		m.state.Flush()
		return m, nil
	case keyEsc:
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if after := m.search.Value(); after != before {
		m.state.SetSearch(after)
	}
	return m, cmd
}

func (m *BrowseModel[T]) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyQuit, keyCtrlC:
		return m.quit()
	case keySlash:
		m.searching = true
		m.search.Focus()
		return m, textinput.Blink
	case keyS:
		m.cycleSort()
		return m, nil
	case keyC:
		if m.opts.HasCategory {
			m.state.ToggleCategory()
		}
		return m, nil
	case keyLeft, keyH:
		if m.pages.HasPrev {
			m.state.SetPage(m.pages.CurrentPage - 1)
		}
		return m, nil
	case keyRight, keyL:
		if m.pages.HasNext {
			m.state.SetPage(m.pages.CurrentPage + 1)
		}
		return m, nil
	case keyR:
		m.status = ""
		m.loader.Reload(m.ctx)
		return m, nil
	case keyA:
		return m, m.addSelected()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *BrowseModel[T]) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.Close()
	return m, tea.Quit
}

func (m *BrowseModel[T]) cycleSort() {
	if len(m.sorts) <= 1 {
		return
	}
	m.sortIdx = (m.sortIdx + 1) % len(m.sorts)
	m.state.SetSort(m.sorts[m.sortIdx])
}

// addSelected returns a command adding the selected row to the cart, or nil when
// nothing can be added.
func (m *BrowseModel[T]) addSelected() tea.Cmd {
	if m.opts.Cart == nil {
		m.setStatus("Adding to a cart is not available here", true)
		return nil
	}
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.result.Items) {
		return nil
	}
	line, ok := any(m.result.Items[idx]).(CartLine)
	if !ok {
		m.setStatus("These rows cannot be added to a cart", true)
		return nil
	}

	ctx, c, item := m.ctx, m.opts.Cart, line.LineItem()
	return func() tea.Msg {
		added, err := c.Add(ctx, item)
		return cartMsg{item: added, err: err}
	}
}

func (m *BrowseModel[T]) tableHeight() int {
	return max(m.height-chromeHeight, minTableHeight)
}

// View renders the browser.
func (m *BrowseModel[T]) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(titleStyle().Render(m.opts.Title))
	sb.WriteString("\n")
	sb.WriteString(m.renderQueryLine())
	sb.WriteString("\n\n")
	sb.WriteString(m.table.View())
	sb.WriteString("\n")
	sb.WriteString(m.renderPager())
	sb.WriteString("\n")
	sb.WriteString(m.renderStatus())
	sb.WriteString("\n")
	sb.WriteString(mutedStyle().Render(m.helpText()))
	return sb.String()
}

func (m *BrowseModel[T]) renderQueryLine() string {
	parts := make([]string, 0, 3) //nolint:mnd // search, sort, category
	if m.searching || m.search.Value() != "" {
		parts = append(parts, m.search.View())
	} else {
		parts = append(parts, mutedStyle().Render("press / to search"))
	}

	sortLabel := "none"
	if !m.params.Sort.IsZero() {
		sortLabel = m.params.Sort.String()
	}
	parts = append(parts, labelStyle().Render("Sort: ")+valueStyle().Render(sortLabel))

	if m.opts.HasCategory {
		parts = append(parts, labelStyle().Render("Category: ")+valueStyle().Render(string(m.params.Category)))
	}
	return strings.Join(parts, "   ")
}

func (m *BrowseModel[T]) renderPager() string {
	if m.pages.TotalItems == 0 {
		return mutedStyle().Render("No results")
	}

	labels := make([]string, 0, len(m.pages.Entries))
	for _, e := range m.pages.Entries {
		if !e.Ellipsis && e.Page == m.pages.CurrentPage {
			labels = append(labels, currentPageStyle().Render(" "+e.Label()+" "))
			continue
		}
		labels = append(labels, e.Label())
	}
	summary := labelStyle().Render(fmt.Sprintf("Page %d of %d (%d items)  ",
		m.pages.CurrentPage, m.pages.TotalPages, m.pages.TotalItems))
	return summary + strings.Join(labels, " ")
}

func (m *BrowseModel[T]) renderStatus() string {
	switch {
	case m.result.Loading:
		return m.spinner.View() + " Loading..."
	case m.status != "" && m.statusErr:
		return errorStyle().Render(m.status)
	case m.status != "":
		return okStyle().Render(m.status)
	case m.opts.Cart != nil:
		return labelStyle().Render(fmt.Sprintf("%s: %d lines", m.opts.Cart.Key(), m.opts.Cart.Count()))
	default:
		return ""
	}
}

func (m *BrowseModel[T]) helpText() string {
	keys := []string{"/ search", "s sort"}
	if m.opts.HasCategory {
		keys = append(keys, "c category")
	}
	keys = append(keys, "←/→ page")
	if m.opts.Cart != nil {
		keys = append(keys, "a add to cart")
	}
	keys = append(keys, "r reload", "q quit")
	return strings.Join(keys, " • ")
}

// Params returns the parameters of the last committed query.
func (m *BrowseModel[T]) Params() query.Params {
	return m.params
}

// Result returns the last loader result applied to the view.
func (m *BrowseModel[T]) Result() loader.Result[T] {
	return m.result
}
