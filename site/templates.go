package site

const baseCSS = `
body { font-family: Arial, sans-serif; max-width: 860px; margin: 0 auto; padding: 1rem; color: #222; }
header { border-bottom: 2px solid #b31b1b; margin-bottom: 1rem; }
header h1 { color: #b31b1b; margin-bottom: 0.2rem; }
nav a { margin-right: 1rem; }
article { border-bottom: 1px solid #ddd; padding: 1rem 0; }
article h2 { margin: 0 0 0.4rem 0; font-size: 1.1rem; }
.meta { color: #666; font-size: 0.85rem; }
.decision { display: inline-block; padding: 0.1rem 0.5rem; border-radius: 3px; font-size: 0.8rem; }
.decision.recommended { background: #e6f4ea; color: #137333; }
.decision.borderline { background: #fef7e0; color: #b06000; }
.decision.not_recommended { background: #fce8e6; color: #c5221f; }
.empty { color: #666; font-style: italic; padding: 2rem 0; }
.trend { background: #f6f6f6; border-left: 3px solid #b31b1b; padding: 0.5rem 1rem; margin-bottom: 1rem; }
.trend h3 { margin: 0.2rem 0; }
ul.days { list-style: none; padding: 0; }
ul.days li { padding: 0.3rem 0; }
`

const dayTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} - {{.Day.Date}}</title>
<style>{{.CSS}}</style>
</head>
<body>
<header>
<h1>{{.Title}}</h1>
<nav><a href="../index.html">Latest</a><a href="../history.html">History</a></nav>
</header>
<main>
<h2>{{.Day.Date}} - {{len .Day.Entries}} paper(s)</h2>
{{if .Day.TrendOverview}}<section class="trend"><h3>Trend overview</h3><p>{{.Day.TrendOverview}}</p></section>{{end}}
{{if not .Day.Entries}}<p class="empty">No new papers matched the filters on this day.</p>{{end}}
{{range $i, $e := .Day.Entries}}
<article>
<h2>{{inc $i}}. <a href="{{$e.Paper.EntryURL}}">{{$e.Paper.Title}}</a></h2>
<p class="meta">{{$e.Paper.AuthorsCSV}} · {{$e.Paper.PrimaryCategory}}</p>
<p><span class="decision {{$e.AI.Decision}}">{{$e.AI.Decision}}</span></p>
{{if $e.AI.Keywords}}<p class="meta">Keywords: {{join $e.AI.Keywords ", "}}</p>{{end}}
{{if $e.AI.CorePainPoint}}<p><strong>Pain point:</strong> {{$e.AI.CorePainPoint}}</p>{{end}}
{{if $e.AI.TechnicalInnovation}}<p><strong>Innovation:</strong> {{$e.AI.TechnicalInnovation}}</p>{{end}}
{{if $e.AI.ApplicationValue}}<p><strong>Application value:</strong> {{$e.AI.ApplicationValue}}</p>{{end}}
{{if $e.AI.Summary}}<p><strong>Summary:</strong> {{$e.AI.Summary}}</p>{{end}}
{{if $e.AI.DecisionReason}}<p class="meta">Reason: {{$e.AI.DecisionReason}}</p>{{end}}
</article>
{{end}}
</main>
</body>
</html>
`

const indexTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>{{.CSS}}</style>
</head>
<body>
<header>
<h1>{{.Title}}</h1>
<nav><a href="history.html">History</a></nav>
</header>
<main>
{{if .Latest}}
<h2>Latest: <a href="days/{{.Latest.Date}}.html">{{.Latest.Date}}</a> - {{len .Latest.Entries}} paper(s)</h2>
{{if .Latest.TrendOverview}}<section class="trend"><h3>Trend overview</h3><p>{{.Latest.TrendOverview}}</p></section>{{end}}
{{range .Latest.Entries}}
<article>
<h2><a href="{{.Paper.EntryURL}}">{{.Paper.Title}}</a></h2>
<p><span class="decision {{.AI.Decision}}">{{.AI.Decision}}</span> {{.AI.Summary}}</p>
</article>
{{end}}
{{else}}
<p class="empty">No archive pages yet.</p>
{{end}}
</main>
</body>
</html>
`

const historyTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} - History</title>
<style>{{.CSS}}</style>
</head>
<body>
<header>
<h1>{{.Title}}</h1>
<nav><a href="index.html">Latest</a></nav>
</header>
<main>
<h2>History</h2>
<ul class="days">
{{range .Dates}}<li><a href="days/{{.}}.html">{{.}}</a></li>
{{end}}</ul>
</main>
</body>
</html>
`
