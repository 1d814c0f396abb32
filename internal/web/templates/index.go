package templates

import (
	"strings"

	"github.com/a-h/templ"
)

// IndexParams holds the data for the search page.
type IndexParams struct {
	Title        string
	DownloadName string
	AuditEnabled bool
}

// Index renders the search page. Element IDs are the hooks app.js binds to.
func Index(p IndexParams) templ.Component {
	var b strings.Builder
	b.WriteString(`<main class="container">
<h1>` + templ.EscapeString(p.Title) + `</h1>

<section class="search">
<input type="text" id="searchInput" placeholder="Mc Serial No, Host Name or IP Address" autocomplete="off">
<button type="button" id="searchBtn">Search</button>
<button type="button" id="addAssetBtn">Add Asset</button>
<button type="button" id="downloadExcelBtn" title="` + templ.EscapeString(p.DownloadName) + `">Download Excel</button>
</section>

<p id="statusMessage" class="status" role="status" hidden></p>

<section id="assetDisplay" class="asset-display" hidden>
<div class="table-wrap">
<table>
<thead><tr id="tableHeaderRow"></tr></thead>
<tbody><tr id="tableDataRow"></tr></tbody>
</table>
</div>
<div class="actions">
<button type="button" id="editAssetBtn">Edit</button>
<button type="button" id="deleteAssetBtn" class="danger">Delete</button>
<button type="button" id="exportPdfBtn" hidden>Export PDF</button>
</div>
</section>

<form id="editForm" class="edit-form" hidden></form>
<button type="button" id="saveChangesBtn" hidden>Save Changes</button>
`)
	if p.AuditEnabled {
		b.WriteString(`<p class="footnote"><a href="/api/audit-log?limit=50">Recent changes (JSON)</a></p>
`)
	}
	b.WriteString(`</main>
`)
	return layout(p.Title, raw(b.String()))
}
