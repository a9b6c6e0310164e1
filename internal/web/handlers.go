package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/keyxmakerx/worldatlas/internal/middleware"
	"github.com/keyxmakerx/worldatlas/internal/templates/layouts"
	"github.com/keyxmakerx/worldatlas/internal/workflow"
	"github.com/keyxmakerx/worldatlas/internal/world"
)

// maxChatTurns bounds the history the viewer carries between requests.
const maxChatTurns = 20

// loadErrorMessage is shown on the viewer when the data service is down.
const loadErrorMessage = "档案暂时无法读取，请稍后再试。"

// PublicSource lists what the public viewer shows.
type PublicSource interface {
	PublicLocations(ctx context.Context) ([]world.Location, error)
	PublicCharacters(ctx context.Context) ([]world.Character, error)
	PublicTimeline(ctx context.Context) ([]world.ChronicleEntry, error)
}

// Asker answers viewer chat messages. It never fails; failures come back
// as a fixed fallback reply.
type Asker interface {
	Ask(ctx context.Context, message, contextText string, history []world.ChatTurn) string
}

// Handler serves the viewer and the admin console.
type Handler struct {
	public    PublicSource
	chat      Asker
	consoles  *ConsoleRegistry
	adminPath string
}

// NewHandler creates the front end handler.
func NewHandler(public PublicSource, chat Asker, consoles *ConsoleRegistry, adminPath string) *Handler {
	return &Handler{public: public, chat: chat, consoles: consoles, adminPath: adminPath}
}

// render adds the layout values every page needs and writes component.
func (h *Handler) render(c echo.Context, code int, component templ.Component) error {
	ctx := c.Request().Context()
	ctx = layouts.SetAdminPath(ctx, h.adminPath)
	ctx = layouts.SetActivePath(ctx, c.Request().URL.Path)
	c.SetRequest(c.Request().WithContext(ctx))
	return middleware.Render(c, code, component)
}

// --- Viewer ---

// Viewer renders the public map, characters and chronicle (GET on every
// path except the console path).
func (h *Handler) Viewer(c echo.Context) error {
	data := h.loadViewer(c)
	data.CSRF = middleware.GetCSRFToken(c)
	return h.render(c, http.StatusOK, viewerPage(data))
}

// loadViewer fetches the public collections. On failure the page shows
// empty lists under a flash message.
func (h *Handler) loadViewer(c echo.Context) viewerData {
	var data viewerData
	g, gctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() error {
		var err error
		data.Locations, err = h.public.PublicLocations(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		data.Characters, err = h.public.PublicCharacters(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		data.Entries, err = h.public.PublicTimeline(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		slog.Warn("loading viewer data failed", slog.Any("error", err))
		c.SetRequest(c.Request().WithContext(layouts.SetFlashError(c.Request().Context(), loadErrorMessage)))
		return viewerData{}
	}
	return data
}

// Chat posts a viewer message to the chat endpoint and re-renders the
// viewer with the conversation (POST /chat).
func (h *Handler) Chat(c echo.Context) error {
	ctx := c.Request().Context()
	message := strings.TrimSpace(c.FormValue("message"))
	characterID := c.FormValue("character_id")

	history := decodeHistory(c.FormValue("history"))
	data := h.loadViewer(c)
	data.CSRF = middleware.GetCSRFToken(c)

	if message != "" {
		contextText := ""
		for _, ch := range data.Characters {
			if ch.ID == characterID {
				contextText = characterContext(ch)
				break
			}
		}
		reply := h.chat.Ask(ctx, message, contextText, history)
		history = append(history,
			world.ChatTurn{Role: world.ChatRoleUser, Content: message},
			world.ChatTurn{Role: world.ChatRoleAssistant, Content: reply},
		)
		if len(history) > maxChatTurns {
			history = history[len(history)-maxChatTurns:]
		}
		data.Chat.Reply = reply
	}

	data.Chat.CharacterID = characterID
	data.Chat.Turns = history
	data.Chat.History = encodeHistory(history)
	return h.render(c, http.StatusOK, viewerPage(data))
}

// characterContext describes a character to the archive persona.
func characterContext(ch world.Character) string {
	var b strings.Builder
	b.WriteString("人物：" + ch.Name)
	if ch.Title != "" {
		b.WriteString("，" + ch.Title)
	}
	if ch.Faction != "" {
		b.WriteString("（" + ch.Faction + "）")
	}
	if ch.Description != "" {
		b.WriteString("\n" + ch.Description)
	}
	if ch.RPPrompt != "" {
		b.WriteString("\n" + ch.RPPrompt)
	}
	return b.String()
}

func decodeHistory(raw string) []world.ChatTurn {
	if raw == "" {
		return nil
	}
	var turns []world.ChatTurn
	if err := json.Unmarshal([]byte(raw), &turns); err != nil {
		return nil
	}
	out := turns[:0]
	for _, t := range turns {
		if t.Role == world.ChatRoleUser || t.Role == world.ChatRoleAssistant {
			out = append(out, t)
		}
	}
	if len(out) > maxChatTurns {
		out = out[len(out)-maxChatTurns:]
	}
	return out
}

func encodeHistory(turns []world.ChatTurn) string {
	if len(turns) == 0 {
		return ""
	}
	b, err := json.Marshal(turns)
	if err != nil {
		return ""
	}
	return string(b)
}

// --- Console ---

// Console renders the admin console (GET on the exact console path).
func (h *Handler) Console(c echo.Context) error {
	entry := h.consoles.Get(c)
	entry.mu.Lock()
	data := h.consoleData(c, entry.console)
	entry.mu.Unlock()
	return h.render(c, http.StatusOK, consolePage(data))
}

func (h *Handler) consoleData(c echo.Context, con *workflow.Console) consoleData {
	d := consoleData{
		CSRF:      middleware.GetCSRFToken(c),
		AdminPath: h.adminPath,
		Verified:  con.Guard.Verified(),
		AuthError: con.Guard.AuthError(),
		Status:    con.Status(),
		Loading:   con.Loading(),
		Tab:       con.Tab(),
		Tabs:      workflow.Tabs,

		Locations:  con.SortedLocations(),
		Characters: con.SortedCharacters(),
		Entries:    con.SortedChronicles(),

		Location:  con.Locations.Draft(),
		Character: con.Characters.Draft(),
		Chronicle: con.Chronicles.Draft(),

		Categories:        world.Categories,
		LocationStatuses:  world.LocationStatuses,
		DiscoveryStages:   world.DiscoveryStages,
		ChronicleStatuses: world.ChronicleStatuses,
	}
	switch d.Tab {
	case workflow.TabLocations:
		d.Selected, d.Busy = con.Locations.Selected(), con.Locations.Busy()
	case workflow.TabCharacters:
		d.Selected, d.Busy = con.Characters.Selected(), con.Characters.Busy()
	case workflow.TabChronicles:
		d.Selected = con.Chronicles.Selected()
	}
	return d
}

// action runs fn against the browser's console under its lock and
// redirects back to the console.
func (h *Handler) action(c echo.Context, fn func(ctx context.Context, con *workflow.Console) error) error {
	entry := h.consoles.Get(c)
	entry.mu.Lock()
	err := fn(c.Request().Context(), entry.console)
	entry.mu.Unlock()
	if err != nil {
		// Workflow failures are already on the status line.
		slog.Debug("console action failed", slog.String("path", c.Path()), slog.Any("error", err))
	}
	return c.Redirect(http.StatusSeeOther, h.adminPath)
}

// verified wraps a console action so it only runs for a verified session
// whose page was rendered for the active tab.
func (h *Handler) verified(fn func(ctx context.Context, c echo.Context, con *workflow.Console) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		return h.action(c, func(ctx context.Context, con *workflow.Console) error {
			if !con.Guard.Verified() {
				return nil
			}
			if tab := c.FormValue("tab"); tab != "" && workflow.Tab(tab) != con.Tab() {
				return nil
			}
			return fn(ctx, c, con)
		})
	}
}

func (h *Handler) Login(c echo.Context) error {
	return h.action(c, func(ctx context.Context, con *workflow.Console) error {
		return con.Login(ctx, c.FormValue("token"))
	})
}

func (h *Handler) Logout(c echo.Context) error {
	return h.action(c, func(ctx context.Context, con *workflow.Console) error {
		return con.Logout(ctx)
	})
}

func switchTab(_ context.Context, c echo.Context, con *workflow.Console) error {
	con.SwitchTab(workflow.Tab(c.FormValue("to")))
	return nil
}

func newRecord(_ context.Context, _ echo.Context, con *workflow.Console) error {
	con.New(con.Tab())
	return nil
}

func selectRecord(_ context.Context, c echo.Context, con *workflow.Console) error {
	return con.Select(con.Tab(), c.FormValue("id"))
}

func saveRecord(ctx context.Context, c echo.Context, con *workflow.Console) error {
	switch con.Tab() {
	case workflow.TabLocations:
		con.Locations.SetDraft(locationDraftFromForm(c))
		return con.Locations.Save(ctx, nil)
	case workflow.TabCharacters:
		con.Characters.SetDraft(characterDraftFromForm(c))
		return con.Characters.Save(ctx, nil)
	case workflow.TabChronicles:
		con.Chronicles.SetDraft(chronicleDraftFromForm(c))
		return con.Chronicles.Save(ctx, nil)
	}
	return nil
}

func deleteRecord(ctx context.Context, _ echo.Context, con *workflow.Console) error {
	switch con.Tab() {
	case workflow.TabLocations:
		return con.Locations.Delete(ctx)
	case workflow.TabCharacters:
		return con.Characters.Delete(ctx)
	case workflow.TabChronicles:
		return con.Chronicles.Delete(ctx)
	}
	return nil
}

// attachImage keeps the form edits as the current draft, then uploads the
// chosen file and saves the draft with the new image URL.
func attachImage(ctx context.Context, c echo.Context, con *workflow.Console) error {
	file, closeFn, err := imageFromForm(c)
	if err != nil {
		return err
	}
	defer closeFn()

	switch con.Tab() {
	case workflow.TabLocations:
		con.Locations.SetDraft(locationDraftFromForm(c))
		return con.Locations.AttachImage(ctx, file)
	case workflow.TabCharacters:
		con.Characters.SetDraft(characterDraftFromForm(c))
		return con.Characters.AttachImage(ctx, file)
	}
	return nil
}

// imageFromForm reads the "image" file field. A missing file yields an
// empty ImageFile so the workflow can report it.
func imageFromForm(c echo.Context) (workflow.ImageFile, func(), error) {
	noop := func() {}
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return workflow.ImageFile{}, noop, nil
	}
	if err != nil {
		return workflow.ImageFile{}, noop, err
	}
	f, err := fh.Open()
	if err != nil {
		return workflow.ImageFile{}, noop, err
	}
	return workflow.ImageFile{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Content:     f,
	}, func() { f.Close() }, nil
}

// --- Form mapping ---

func locationDraftFromForm(c echo.Context) workflow.LocationDraft {
	return workflow.LocationDraft{
		Name:        c.FormValue("name"),
		Type:        world.ParseCategory(c.FormValue("type")),
		X:           world.ParseCoordinate(c.FormValue("x")),
		Y:           world.ParseCoordinate(c.FormValue("y")),
		Description: c.FormValue("description"),
		Lore:        c.FormValue("lore"),
		ImageURL:    strings.TrimSpace(c.FormValue("image_url")),
		Status:      world.ParseLocationStatus(c.FormValue("status")),
	}
}

func characterDraftFromForm(c echo.Context) workflow.CharacterDraft {
	return workflow.CharacterDraft{
		Name:              c.FormValue("name"),
		Title:             c.FormValue("title"),
		Faction:           c.FormValue("faction"),
		Description:       c.FormValue("description"),
		Lore:              c.FormValue("lore"),
		Bio:               c.FormValue("bio"),
		RPPrompt:          c.FormValue("rp_prompt"),
		ImageURL:          strings.TrimSpace(c.FormValue("image_url")),
		Stories:           world.NewJSONText(c.FormValue("stories")),
		Attributes:        world.NewJSONText(c.FormValue("attributes")),
		CurrentLocationID: c.FormValue("current_location_id"),
		HomeLocationID:    c.FormValue("home_location_id"),
		DiscoveryStage:    world.ParseDiscoveryStage(c.FormValue("discovery_stage")),
	}
}

func chronicleDraftFromForm(c echo.Context) workflow.ChronicleDraft {
	return workflow.ChronicleDraft{
		Title:     c.FormValue("title"),
		DateLabel: c.FormValue("date_label"),
		Summary:   c.FormValue("summary"),
		Status:    world.ParseChronicleStatus(c.FormValue("status")),
	}
}
