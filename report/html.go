package report

import (
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const pageTitle = "Placement Statistics Report"

const pageStyle = `body{font-family:-apple-system,"Segoe UI",Helvetica,Arial,sans-serif;color:#1f2937;background:#fff;margin:0;padding:1.5rem;}
.report{max-width:960px;margin:0 auto;}
h1{font-size:1.6rem;border-bottom:2px solid #2563eb;padding-bottom:0.4rem;}
h2{font-size:1.15rem;margin-top:1.6rem;color:#1e3a8a;}
table{width:100%;border-collapse:collapse;font-size:0.85rem;margin:0.5rem 0 1rem;}
th,td{border:1px solid #cbd5e1;padding:0.35rem 0.5rem;text-align:left;vertical-align:top;}
thead th{background:#eff6ff;font-weight:700;}
html,body,*{-webkit-print-color-adjust:exact !important;print-color-adjust:exact !important;}
@media print{@page{size:A4;margin:12mm;} body{padding:0;} h2{break-after:avoid;} tr{break-inside:avoid;}}`

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// ToHTML converts a markdown report into a standalone printable HTML page.
func ToHTML(markdown string) (string, error) {
	var content strings.Builder
	if err := md.Convert([]byte(markdown), &content); err != nil {
		return "", fmt.Errorf("report: markdown convert: %w", err)
	}

	return "<!doctype html><html><head><meta charset='utf-8'>" +
		"<title>" + html.EscapeString(pageTitle) + "</title>" +
		"<style>" + pageStyle + "</style></head><body>" +
		"<main class='report'>" + content.String() + "</main>" +
		"</body></html>", nil
}
