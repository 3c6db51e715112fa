package qwatch

import (
	"context"
	"time"

	"github.com/gdamore/tcell"
	"github.com/mattn/go-runewidth"
)

const (
	headerRow = 0
	titleRow  = 1
	bodyRow   = 2

	noJobsMessage = "Currently no jobs in the queue."
)

type column struct {
	title string
	x     int
	width int
}

var columns = []column{
	{"Owner", 0, 15},
	{"JOB ID", 15, 20},
	{"JOB Name", 35, 20},
	{"Queue", 55, 10},
	{"Node", 65, 10},
	{"Time", 75, 10},
	{"Memory", 85, 10},
}

// Config holds runtime options for the App.
type Config struct {
	Interval time.Duration
	Username string
}

// An App drives the watch loop: it owns the view state, reacts to key
// presses and redraws the job table on the screen.
type App struct {
	watch  *Watcher
	scr    tcell.Screen
	config Config

	autoRefresh bool
	ownOnly     bool

	timer   *time.Timer
	polls   chan error
	polling bool
	events  chan tcell.Event
	lastErr error
}

// NewApp returns an App showing jobs from watch on scr.
func NewApp(watch *Watcher, scr tcell.Screen, config Config) *App {
	app := &App{
		watch:       watch,
		scr:         scr,
		config:      config,
		autoRefresh: true,
		polls:       make(chan error, 1),
		events:      make(chan tcell.Event),
	}

	// The timer starts disarmed; it is armed only after a refresh completes
	// while auto refresh is enabled.
	app.timer = time.NewTimer(config.Interval)
	app.stopTimer()

	return app
}

// Start runs the application until the user quits.
func (app *App) Start() error {
	go app.dispatch()

	app.drawHeader()
	app.scr.Show()
	app.beginRefresh()

	for {
		select {
		case ev := <-app.events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if quit := app.handleKey(ev); quit {
					app.stopTimer()
					return nil
				}

			case *tcell.EventResize:
				app.scr.Clear()
				app.drawHeader()
				app.drawJobs()
				app.scr.Sync()
			}

		case err := <-app.polls:
			app.finishRefresh(err)

		case <-app.timer.C:
			app.beginRefresh()
		}
	}
}

func (app *App) dispatch() {
	for {
		ev := app.scr.PollEvent()
		if ev == nil {
			return
		}
		app.events <- ev
	}
}

// handleKey reacts to one key press. It reports whether the application
// should quit.
func (app *App) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		return true

	case tcell.KeyCtrlL:
		app.scr.Sync()
		return false

	case tcell.KeyRune:
		// Handled below.

	default:
		return false
	}

	switch ev.Rune() {
	case 'q', 'Q':
		return true

	case 'a', 'A':
		app.autoRefresh = !app.autoRefresh
		app.drawHeader()
		if app.autoRefresh {
			app.beginRefresh()
		} else {
			app.stopTimer()
		}

	case 'u', 'U':
		app.ownOnly = !app.ownOnly
		app.drawHeader()
		app.drawJobs()

	case 'r', 'R':
		app.drawHeader()
		app.beginRefresh()
	}

	app.scr.Show()

	return false
}

// beginRefresh starts a background poll of the job source. At most one poll
// runs at a time; a request while one is active is a no-op.
func (app *App) beginRefresh() {
	if app.polling {
		return
	}
	app.polling = true

	go func() {
		app.polls <- app.watch.Refresh(context.Background())
	}()
}

// finishRefresh publishes the result of a completed poll. A failed poll
// keeps the previous snapshot on screen. The timer is re-armed here so the
// interval is measured from the end of the refresh.
func (app *App) finishRefresh(err error) {
	app.polling = false
	app.lastErr = err

	app.drawJobs()
	app.scr.Show()

	if app.autoRefresh {
		app.rearmTimer()
	}
}

func (app *App) rearmTimer() {
	app.stopTimer()
	app.timer.Reset(app.config.Interval)
}

func (app *App) stopTimer() {
	if !app.timer.Stop() {
		select {
		case <-app.timer.C:
		default:
		}
	}
}

func (app *App) drawHeader() {
	clearLine(app.scr, headerRow)
	clearLine(app.scr, titleRow)

	plain := tcell.StyleDefault
	hotkey := tcell.StyleDefault.Underline(true)
	standout := tcell.StyleDefault.Reverse(true)

	x := 0
	x += printStr(app.scr, x, headerRow, "["+checkbox(app.autoRefresh)+"] ", plain)
	x += printStr(app.scr, x, headerRow, "a", hotkey)
	x += printStr(app.scr, x, headerRow, "uto refresh        ", plain)
	x += printStr(app.scr, x, headerRow, "["+checkbox(app.ownOnly)+"] ", plain)
	x += printStr(app.scr, x, headerRow, "u", hotkey)
	x += printStr(app.scr, x, headerRow, "ser's jobs        ", plain)
	x += printStr(app.scr, x, headerRow, "r", hotkey)
	x += printStr(app.scr, x, headerRow, "efresh        ", plain)
	x += printStr(app.scr, x, headerRow, "q", hotkey)
	printStr(app.scr, x, headerRow, "uit", plain)

	for _, col := range columns {
		printStr(app.scr, col.x, titleRow, pad(col.title, col.width), standout)
	}
}

func (app *App) drawJobs() {
	clearBelow(app.scr, bodyRow)

	jobs := app.watch.Jobs()
	if app.ownOnly {
		jobs = OwnedBy(jobs, app.config.Username)
	}

	if len(jobs) == 0 {
		printStr(app.scr, 20, bodyRow, noJobsMessage, tcell.StyleDefault)
		return
	}

	for i, job := range jobs {
		y := bodyRow + i

		cells := []string{
			cell(job.Owner()),
			cell(job.ID()),
			cell(job.Name()),
			cell(job.Queue()),
			cell(job.Host()),
			cell(job.Time()),
			cell(job.Memory()),
		}

		for c, col := range columns {
			text := runewidth.Truncate(cells[c], col.width-1, "")
			printStr(app.scr, col.x, y, text, tcell.StyleDefault)
		}
	}
}

// cell degrades a failed field lookup to a placeholder so one bad value does
// not lose the whole row.
func cell(s string, err error) string {
	if err != nil {
		return "-"
	}
	return s
}

func checkbox(set bool) string {
	if set {
		return "x"
	}
	return " "
}

func pad(s string, width int) string {
	for len(s) < width {
		s += " "
	}
	return s
}

func printStr(scr tcell.Screen, x, y int, s string, style tcell.Style) int {
	for i, c := range s {
		scr.SetContent(x+i, y, c, nil, style)
	}
	return len(s)
}

func clearLine(scr tcell.Screen, y int) {
	w, _ := scr.Size()
	for x := 0; x < w; x++ {
		scr.SetContent(x, y, ' ', nil, tcell.StyleDefault)
	}
}

func clearBelow(scr tcell.Screen, top int) {
	w, h := scr.Size()
	for y := top; y < h; y++ {
		for x := 0; x < w; x++ {
			scr.SetContent(x, y, ' ', nil, tcell.StyleDefault)
		}
	}
}
