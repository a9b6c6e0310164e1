package web

import (
	"context"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"github.com/keyxmakerx/worldatlas/internal/templates/layouts"
	"github.com/keyxmakerx/worldatlas/internal/workflow"
	"github.com/keyxmakerx/worldatlas/internal/world"
)

var funcs = template.FuncMap{
	"pickOf": func(admin, csrf string, tab workflow.Tab, id, label, selected string) pick {
		return pick{Admin: admin, CSRF: csrf, Tab: string(tab), ID: id, Label: label, Selected: selected}
	},
}

// page renders one named template inside the page shell.
func page(title, name string, data any) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return views.ExecuteTemplate(w, name, data)
	})
	return layouts.Base(title, body)
}

// --- Viewer ---

type viewerData struct {
	CSRF       string
	Locations  []world.Location
	Characters []world.Character
	Entries    []world.ChronicleEntry
	Chat       chatData
}

type chatData struct {
	CharacterID string
	Reply       string
	History     string
	Turns       []world.ChatTurn
}

func viewerPage(d viewerData) templ.Component {
	return page("世界图鉴", "viewer", d)
}

// --- Console ---

type consoleData struct {
	CSRF      string
	AdminPath string
	Verified  bool
	AuthError string
	Status    string
	Loading   bool
	Tab       workflow.Tab
	Tabs      []workflow.Tab

	Locations  []world.Location
	Characters []world.Character
	Entries    []world.ChronicleEntry

	Selected string
	Busy     bool

	Location  workflow.LocationDraft
	Character workflow.CharacterDraft
	Chronicle workflow.ChronicleDraft

	Categories        []world.Category
	LocationStatuses  []world.LocationStatus
	DiscoveryStages   []world.DiscoveryStage
	ChronicleStatuses []world.ChronicleStatus
}

func consolePage(d consoleData) templ.Component {
	return page("管理控制台", "console", d)
}

// --- Errors ---

type errorData struct {
	Code    int
	Message string
}

func errorPage(code int, message string) templ.Component {
	return page("出错了", "error", errorData{Code: code, Message: message})
}

var views = template.Must(template.New("views").Funcs(funcs).Parse(`
{{define "viewer"}}
<section>
<h2>地图</h2>
<div class="map">
{{range .Locations}}<span class="marker {{.Status}}" style="left:{{.X}}%;top:{{.Y}}%" title="{{.Description}}">◆ {{.Name}}</span>
{{end}}
</div>
</section>
<div class="cols">
<section>
<h2>人物</h2>
<ul>
{{range .Characters}}<li><strong>{{.Name}}</strong>{{with .Title}} · {{.}}{{end}}{{with .Faction}} <small>{{.}}</small>{{end}}</li>
{{else}}<li>暂无人物</li>{{end}}
</ul>
<h2>编年史</h2>
<ol>
{{range .Entries}}<li><strong>{{.Title}}</strong> <small>{{.DateLabel}}</small><div>{{.Summary}}</div></li>
{{else}}<li>暂无记载</li>{{end}}
</ol>
</section>
<section>
<h2>询问档案馆</h2>
{{range .Chat.Turns}}<p><strong>{{if eq .Role "user"}}你{{else}}档案馆{{end}}：</strong>{{.Content}}</p>
{{end}}
<form method="post" action="/chat">
<input type="hidden" name="csrf_token" value="{{.CSRF}}">
<input type="hidden" name="history" value="{{.Chat.History}}">
<label>对象
<select name="character_id">
<option value="">档案馆</option>
{{$sel := .Chat.CharacterID}}{{range .Characters}}<option value="{{.ID}}"{{if eq .ID $sel}} selected{{end}}>{{.Name}}</option>
{{end}}
</select></label>
<textarea name="message" maxlength="2000" required></textarea>
<button type="submit">发送</button>
</form>
</section>
</div>
{{end}}

{{define "console"}}
{{if not .Verified}}
<form method="post" action="{{.AdminPath}}/login">
<input type="hidden" name="csrf_token" value="{{.CSRF}}">
{{with .AuthError}}<p class="flash">{{.}}</p>{{end}}
<label>管理员口令 <input type="password" name="token" autocomplete="current-password"></label>
<button type="submit">登录</button>
</form>
{{else}}
<nav>
{{$admin := .AdminPath}}{{$csrf := .CSRF}}{{$tab := .Tab}}
{{range .Tabs}}<form method="post" action="{{$admin}}/tab" style="display:inline">
<input type="hidden" name="csrf_token" value="{{$csrf}}">
<button name="to" value="{{.}}"{{if eq . $tab}} disabled{{end}}>{{.}}</button>
</form>{{end}}
<form method="post" action="{{$admin}}/logout" style="display:inline">
<input type="hidden" name="csrf_token" value="{{$csrf}}">
<button type="submit">退出</button>
</form>
</nav>
<p class="status">{{if .Loading}}加载中…{{else}}{{.Status}}{{end}}</p>
<div class="cols">
<aside>
<form method="post" action="{{$admin}}/new">
<input type="hidden" name="csrf_token" value="{{$csrf}}">
<input type="hidden" name="tab" value="{{$tab}}">
<button type="submit">新建</button>
</form>
<ul>
{{$selected := .Selected}}
{{if eq $tab "locations"}}{{range .Locations}}{{template "pick" (pickOf $admin $csrf $tab .ID .Name $selected)}}{{end}}{{end}}
{{if eq $tab "characters"}}{{range .Characters}}{{template "pick" (pickOf $admin $csrf $tab .ID .Name $selected)}}{{end}}{{end}}
{{if eq $tab "timeline"}}{{range .Entries}}{{template "pick" (pickOf $admin $csrf $tab .ID .Title $selected)}}{{end}}{{end}}
</ul>
</aside>
<form method="post" action="{{$admin}}/save" enctype="multipart/form-data">
<input type="hidden" name="csrf_token" value="{{$csrf}}">
<input type="hidden" name="tab" value="{{$tab}}">
{{if eq $tab "locations"}}{{template "location-form" .}}{{end}}
{{if eq $tab "characters"}}{{template "character-form" .}}{{end}}
{{if eq $tab "timeline"}}{{template "chronicle-form" .}}{{end}}
<button type="submit">保存</button>
{{if ne $tab "timeline"}}
<input type="file" name="image" accept="image/*"{{if .Busy}} disabled{{end}}>
<button type="submit" formaction="{{$admin}}/image"{{if .Busy}} disabled{{end}}>上传图片</button>
{{end}}
{{if .Selected}}<button type="submit" formaction="{{$admin}}/delete"{{if .Busy}} disabled{{end}}>删除</button>{{end}}
</form>
</div>
{{end}}
{{end}}

{{define "pick"}}<li><form method="post" action="{{.Admin}}/select">
<input type="hidden" name="csrf_token" value="{{.CSRF}}">
<input type="hidden" name="tab" value="{{.Tab}}">
<button name="id" value="{{.ID}}"{{if eq .ID .Selected}} disabled{{end}}>{{.Label}}</button>
</form></li>
{{end}}

{{define "location-form"}}{{with .Location}}
<label>名称 <input name="name" value="{{.Name}}" maxlength="200"></label>
<label>类型 <select name="type">{{$t := .Type}}{{range $.Categories}}<option{{if eq . $t}} selected{{end}}>{{.}}</option>{{end}}</select></label>
<label>X <input name="x" type="number" step="0.1" min="0" max="100" value="{{.X}}"></label>
<label>Y <input name="y" type="number" step="0.1" min="0" max="100" value="{{.Y}}"></label>
<label>简介 <textarea name="description">{{.Description}}</textarea></label>
<label>传说 <textarea name="lore">{{.Lore}}</textarea></label>
<label>图片 <input name="image_url" value="{{.ImageURL}}"></label>
<label>状态 <select name="status">{{$s := .Status}}{{range $.LocationStatuses}}<option{{if eq . $s}} selected{{end}}>{{.}}</option>{{end}}</select></label>
{{end}}{{end}}

{{define "character-form"}}{{with .Character}}
<label>名称 <input name="name" value="{{.Name}}" maxlength="200"></label>
<label>称号 <input name="title" value="{{.Title}}"></label>
<label>阵营 <input name="faction" value="{{.Faction}}"></label>
<label>简介 <textarea name="description">{{.Description}}</textarea></label>
<label>传说 <textarea name="lore">{{.Lore}}</textarea></label>
<label>生平 <textarea name="bio">{{.Bio}}</textarea></label>
<label>角色扮演提示 <textarea name="rp_prompt">{{.RPPrompt}}</textarea></label>
<label>图片 <input name="image_url" value="{{.ImageURL}}"></label>
<label>故事 (JSON) <textarea name="stories">{{.Stories.Raw}}</textarea></label>
<label>属性 (JSON) <textarea name="attributes">{{.Attributes.Raw}}</textarea></label>
<label>当前位置 <select name="current_location_id">{{$cur := .CurrentLocationID}}<option value="">—</option>{{range $.Locations}}<option value="{{.ID}}"{{if eq .ID $cur}} selected{{end}}>{{.Name}}</option>{{end}}</select></label>
<label>故乡 <select name="home_location_id">{{$home := .HomeLocationID}}<option value="">—</option>{{range $.Locations}}<option value="{{.ID}}"{{if eq .ID $home}} selected{{end}}>{{.Name}}</option>{{end}}</select></label>
<label>发现阶段 <select name="discovery_stage">{{$d := .DiscoveryStage}}{{range $.DiscoveryStages}}<option{{if eq . $d}} selected{{end}}>{{.}}</option>{{end}}</select></label>
{{end}}{{end}}

{{define "chronicle-form"}}{{with .Chronicle}}
<label>标题 <input name="title" value="{{.Title}}" maxlength="200"></label>
<label>日期 <input name="date_label" value="{{.DateLabel}}"></label>
<label>摘要 <textarea name="summary">{{.Summary}}</textarea></label>
<label>状态 <select name="status">{{$s := .Status}}{{range $.ChronicleStatuses}}<option{{if eq . $s}} selected{{end}}>{{.}}</option>{{end}}</select></label>
{{end}}{{end}}

{{define "error"}}
<h1>{{.Code}}</h1>
<p>{{.Message}}</p>
<p><a href="/">返回首页</a></p>
{{end}}
`))

// pick is one entry of the console's record list.
type pick struct {
	Admin, CSRF, Tab, ID, Label, Selected string
}
