package report

import (
	"encoding/base64"
	"html/template"
	"os"
)

const htmlTpl = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{ .Title }}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Hiragino Sans", "Noto Sans CJK JP", Arial, sans-serif; max-width: 900px; margin: 0 auto; padding: 20px; line-height: 1.6; color: #1e293b; }
        h1 { text-align: center; }
        .meta { text-align: center; color: #64748b; margin-bottom: 30px; }
        table { width: 100%; border-collapse: collapse; margin-bottom: 30px; }
        th, td { border-bottom: 1px solid #e2e8f0; padding: 6px 8px; text-align: left; vertical-align: top; }
        th { background: #f8fafc; }
        .pos { color: #2e7d32; font-weight: bold; }
        .neg { color: #c62828; font-weight: bold; }
        .chart { text-align: center; }
        .chart img { max-width: 100%; }
    </style>
</head>
<body>
    <h1>{{ .Title }}</h1>
    <div class="meta">{{ .Generated }} • {{ len .Rows }} mentions • run {{ .RunID }}</div>

    <h2>Mean sentiment</h2>
    <table>
        <tr><th>Keyword</th><th>Mentions</th><th>Mean</th></tr>
        {{range .Summaries}}
        <tr><td>{{.Keyword}}</td><td>{{.Count}}</td><td class="{{if ge .MeanSentiment 0.0}}pos{{else}}neg{{end}}">{{printf "%.2f" .MeanSentiment}}</td></tr>
        {{end}}
    </table>
    <div class="chart"><img src="{{ .Chart }}" alt="mean sentiment chart"></div>

    <h2>Mentions</h2>
    <table>
        <tr><th>Keyword</th><th>Source</th><th>Text</th><th>Sentiment</th></tr>
        {{range .Rows}}
        <tr><td>{{.Keyword}}</td><td>{{.Source}}</td><td>{{.Text}}</td><td class="{{if ge .Sentiment 0.0}}pos{{else}}neg{{end}}">{{printf "%.2f" .Sentiment}}</td></tr>
        {{end}}
    </table>
</body>
</html>`

var reportTpl = template.Must(template.New("report").Parse(htmlTpl))

// writeHTML 渲染模板，图表以 data URI 内嵌
func writeHTML(path string, p page, png []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	p.Chart = template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png))
	if err := reportTpl.Execute(f, p); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
