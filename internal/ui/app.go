// Package ui  Setup for the gif browser application
package ui

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"runtime"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"gifapp/internal/autoplay"
	"gifapp/internal/catalog"
	"gifapp/internal/config"
	"gifapp/internal/gallery"
	"gifapp/internal/media"
	"gifapp/internal/pager"
	"gifapp/internal/scan"
	"gifapp/internal/service"
	"gifapp/internal/share"
	"gifapp/internal/store"
)

const (
	appID     = "io.github.gifapp"
	appTitle  = "GIF Browser"
	userAgent = "gifapp/1.0"
	cacheDir  = "cache"

	galleryWidth = 860
)

// App represents the whole application with all its windows, widgets and functions
type App struct {
	app      fyne.App
	win      fyne.Window
	settings *config.Settings
	Service  *service.Service

	gallery *gallery.Controller
	pager   *pager.Controller
	player  *autoplay.Player
	sender  share.Sender
	thumbs  *ThumbnailManager

	galleryView *galleryView
	pagerView   *pagerView
	tabs        *container.AppTabs
	detail      dialog.Dialog // open favorite detail, if any

	logUIManager *LogUIManager
	mainModKey   fyne.KeyModifier

	ctx    context.Context
	cancel context.CancelFunc
}

// Options are the resolved start-up settings.
type Options struct {
	CatalogURL       string
	DataDir          string
	AutoplayInterval time.Duration
	HistorySize      int
}

// Command-line flags
var catalogURLFlag = flag.String("catalog-url", "", "Base URL of the gif catalog (default: saved setting or "+catalog.DefaultBaseURL+").")
var dataDirFlag = flag.String("data-dir", "", "Directory for the favorites database and gif cache (default: saved setting or user config dir).")
var autoplayIntervalFlag = flag.Float64("autoplay-interval", 0, "Autoplay interval in seconds (default: saved setting). Min: 0.5.")
var historySizeFlag = flag.Int("history-size", -1, "Number of gifs to remember for going back (0 to disable, default: saved setting).")

// resolveOptions layers the command-line flags over the saved settings.
// Flags that were given are also saved for the next start.
func resolveOptions(settings *config.Settings) Options {
	if *catalogURLFlag != "" {
		settings.SetCatalogURL(*catalogURLFlag)
	}
	if *dataDirFlag != "" {
		settings.SetDataDirectory(*dataDirFlag)
	}
	if *autoplayIntervalFlag > 0 {
		settings.SetAutoplayInterval(time.Duration(*autoplayIntervalFlag * float64(time.Second)))
	}
	if *historySizeFlag >= 0 {
		settings.SetHistorySize(*historySizeFlag)
	}
	return Options{
		CatalogURL:       settings.CatalogURL(),
		DataDir:          settings.DataDirectory(),
		AutoplayInterval: settings.AutoplayInterval(),
		HistorySize:      settings.HistorySize(),
	}
}

// NewService opens the store, the catalog client and the media cache under
// opts.DataDir.
func NewService(opts Options, logger func(string)) (*service.Service, error) {
	cat, err := catalog.NewClient(opts.CatalogURL, catalog.WithUserAgent(userAgent))
	if err != nil {
		return nil, err
	}
	cache, err := media.NewCache(filepath.Join(opts.DataDir, cacheDir))
	if err != nil {
		return nil, err
	}
	fdb, err := store.Open(opts.DataDir, logger)
	if err != nil {
		return nil, err
	}
	return service.NewService(fdb, cat, cache, scan.Walker{}, logger), nil
}

// addLogMessage is safe to call from any goroutine.
func (a *App) addLogMessage(message string) {
	fyne.Do(func() {
		if a.logUIManager != nil {
			a.logUIManager.AddLogMessage(message)
		} else {
			log.Printf("EarlyLog: %s", message)
		}
	})
}

func (a *App) init(opts Options) {
	a.ctx, a.cancel = context.WithCancel(context.Background())
	a.player = autoplay.New(opts.AutoplayInterval)
	a.sender = share.DesktopSender{Clipboard: a.app.Clipboard(), Opener: a.app}
	a.thumbs = NewThumbnailManager(a.addLogMessage)

	exec := fyneExecutor{}
	a.gallery = gallery.New(a.Service, exec, a.addLogMessage)
	a.pager = pager.New(a.Service, exec,
		pager.WithSender(a.sender),
		pager.WithAutoplay(a.player),
		pager.WithHistorySize(opts.HistorySize),
		pager.WithLogger(a.addLogMessage),
	)
}

func (a *App) onGalleryTab() bool {
	return a.tabs != nil && a.tabs.SelectedIndex() == 1
}

func (a *App) buildStatusBar() fyne.CanvasObject {
	label := widget.NewLabel("")
	label.Truncation = fyne.TextTruncateEllipsis
	var up, down *widget.Button
	up = widget.NewButtonWithIcon("", theme.MoveUpIcon(), func() { a.logUIManager.ShowPreviousLogMessage() })
	down = widget.NewButtonWithIcon("", theme.MoveDownIcon(), func() { a.logUIManager.ShowNextLogMessage() })
	a.logUIManager = NewLogUIManager(label, up, down, DefaultMaxLogMessages)
	return container.NewVBox(
		widget.NewSeparator(),
		container.NewBorder(nil, nil, container.NewHBox(up, down), nil, label),
	)
}

func (a *App) buildMainUI() fyne.CanvasObject {
	a.win.SetMaster()
	// set main mod key to super on darwin hosts, else set it to ctrl
	if runtime.GOOS == "darwin" {
		a.mainModKey = fyne.KeyModifierSuper
	} else {
		a.mainModKey = fyne.KeyModifierControl
	}
	status := a.buildStatusBar()

	a.pagerView = newPagerView(a.ctx, a.pager, a.player, a.addLogMessage)
	cell := float32(galleryWidth) / float32(a.settings.GalleryColumns())
	a.galleryView = newGalleryView(a.gallery, a.win, a.thumbs, cell, a.showDetail)

	a.tabs = container.NewAppTabs(
		container.NewTabItemWithIcon("Random", theme.ViewRefreshIcon(), a.pagerView.content),
		container.NewTabItemWithIcon("Favorites", theme.GridIcon(), a.galleryView.content),
	)
	a.tabs.OnSelected = func(item *container.TabItem) {
		if a.onGalleryTab() {
			a.player.Pause(true)
			a.gallery.Refresh()
		} else {
			a.gallery.Deactivate()
			a.player.ResumeAfterOperation()
		}
	}

	a.win.SetMainMenu(fyne.NewMainMenu(
		fyne.NewMenu("File",
			fyne.NewMenuItem("Clean Cache", a.cleanCache),
			fyne.NewMenuItem("Settings", a.showSettings),
		),
		fyne.NewMenu("Edit",
			fyne.NewMenuItem("Select All Favorites", func() {
				a.tabs.SelectIndex(1)
				a.gallery.SetSelectAll(true)
			}),
			fyne.NewMenuItem("Delete Selected", a.galleryView.confirmDelete),
			fyne.NewMenuItem("Keyboard Shortcuts", a.showShortcuts),
		),
		fyne.NewMenu("View",
			fyne.NewMenuItem("Next Gif", func() { a.pager.Next(a.ctx) }),
			fyne.NewMenuItem("Previous Gif", func() { a.pager.Previous() }),
			fyne.NewMenuItem("Play/Pause", a.pagerView.togglePlay),
		),
		fyne.NewMenu("Help",
			fyne.NewMenuItem("About", func() {
				dialog.ShowCustom("About", "Ok", container.NewVBox(
					widget.NewLabel("Browse, like and share random gifs."),
					widget.NewLabel("Catalog: "+a.settings.CatalogURL()),
					widget.NewLabel("Data: "+a.settings.DataDirectory()),
				), a.win)
			}),
		),
	))
	a.buildKeyboardShortcuts()

	return container.NewBorder(nil, status, nil, nil, a.tabs)
}

func (a *App) cleanCache() {
	var keep []string
	if g, ok := a.pager.Current(); ok {
		keep = append(keep, g.ID)
	}
	go func() {
		report, err := a.Service.CleanCache(keep...)
		if err != nil {
			a.addLogMessage(fmt.Sprintf("Cache clean failed: %v", err))
			return
		}
		a.addLogMessage(fmt.Sprintf("Cache clean: %d file(s) removed, %d stale path(s) cleared", report.FilesRemoved, report.PathsCleared))
	}()
}

func (a *App) showSettings() {
	urlEntry := widget.NewEntry()
	urlEntry.SetText(a.settings.CatalogURL())
	columns := widget.NewSelect([]string{"2", "3", "4", "5", "6"}, nil)
	columns.SetSelected(fmt.Sprint(a.settings.GalleryColumns()))
	interval := widget.NewSlider(1, 30)
	interval.SetValue(a.player.Interval().Seconds())
	intervalLabel := widget.NewLabel(fmt.Sprintf("%.0fs", interval.Value))
	interval.OnChanged = func(v float64) { intervalLabel.SetText(fmt.Sprintf("%.0fs", v)) }

	items := []*widget.FormItem{
		widget.NewFormItem("Catalog URL", urlEntry),
		widget.NewFormItem("Gallery columns", columns),
		widget.NewFormItem("Autoplay", container.NewBorder(nil, nil, nil, intervalLabel, interval)),
	}
	dialog.ShowForm("Settings", "Save", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		a.settings.SetCatalogURL(urlEntry.Text)
		var n int
		if _, err := fmt.Sscan(columns.Selected, &n); err == nil {
			a.settings.SetGalleryColumns(n)
		}
		d := time.Duration(interval.Value) * time.Second
		a.settings.SetAutoplayInterval(d)
		a.player.SetInterval(d)
		a.addLogMessage("Settings saved. Catalog and column changes apply after restart.")
	}, a.win)
}

// startBackground runs once the Fyne event loop is up: it cleans the cache,
// loads favorites, fetches the first gif and starts the autoplay ticker.
func (a *App) startBackground() {
	a.gallery.Refresh()
	go func() {
		if report, err := a.Service.CleanCache(); err != nil {
			a.addLogMessage(fmt.Sprintf("Cache clean failed: %v", err))
		} else if report.FilesRemoved > 0 {
			a.addLogMessage(fmt.Sprintf("Removed %d cached gif(s) that were not favorites", report.FilesRemoved))
		}
		fyne.Do(func() { a.pager.FetchRandom(a.ctx) })
	}()
	go a.player.Run(a.ctx, func() {
		fyne.Do(func() {
			if !a.onGalleryTab() {
				a.pager.Next(a.ctx)
			}
		})
	})
}

// CreateApplication is the GUI entrypoint
func CreateApplication() {
	flag.Parse()

	a := app.NewWithID(appID)
	a.Settings().SetTheme(NewCompactTheme(a.Settings().Theme()))

	ui := &App{app: a, settings: config.NewSettings(a)}
	opts := resolveOptions(ui.settings)

	// Define the logger function that the store and service will use.
	// This closure captures the 'ui' variable (*App instance).
	appLoggerFunc := func(message string) {
		if ui.win != nil {
			ui.addLogMessage(message)
		} else {
			log.Printf("EarlyLog: %s", message)
		}
	}

	svc, err := NewService(opts, appLoggerFunc)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	ui.Service = svc

	report, err := svc.Migrate(filepath.Join(opts.DataDir, store.LegacyFileName), filepath.Join(opts.DataDir, store.LegacyDatabaseName))
	if err != nil {
		log.Printf("Legacy favorites were not imported: %v", err)
	} else if report.Imported() > 0 {
		log.Printf("Imported %d legacy favorite(s)", report.Imported())
	}

	ui.win = a.NewWindow(appTitle)
	ui.win.SetCloseIntercept(func() {
		ui.cancel()
		log.Println("Closing favorites database...")
		if err := ui.Service.Close(); err != nil {
			log.Printf("Error closing favorites database: %v", err)
		}
		ui.win.Close()
	})

	ui.init(opts)
	ui.win.SetContent(ui.buildMainUI())
	a.Lifecycle().SetOnStarted(ui.startBackground)

	ui.win.Resize(fyne.NewSize(900, 700))
	ui.win.CenterOnScreen()
	ui.win.ShowAndRun()
}
