package server

import "net/http"

// matcherCSS styles the annotation classes the reconciler stamps onto rows.
// Selectors must stay in sync with the constants in internal/annotate.
const matcherCSS = `.matcher-row-mismatch td,
.matcher-row-mismatch [role="gridcell"] {
  border-left: 3px solid #e5483e !important;
  border-right: 3px solid #e5483e !important;
}
.matcher-row-mismatch-top td,
.matcher-row-mismatch-top [role="gridcell"] {
  border-top: 3px solid #e5483e !important;
}
.matcher-row-mismatch-bottom td,
.matcher-row-mismatch-bottom [role="gridcell"] {
  border-bottom: 3px solid #e5483e !important;
}
.matcher-hidden-row {
  display: none !important;
}
.matcher-register-btn {
  position: absolute;
  right: 2px;
  bottom: 2px;
  z-index: 10;
  padding: 1px 6px;
  font-size: 11px;
  color: #fff;
  background: #e5483e;
  border: none;
  border-radius: 3px;
  cursor: pointer;
}
.matcher-register-btn:hover {
  background: #c73a31;
}
`

// matcherJS wires the registration buttons: a confirmed click posts the
// pair back to the agent, which persists it and rescans.
const matcherJS = `(function () {
  document.addEventListener('click', function (event) {
    var btn = event.target.closest('.matcher-register-btn');
    if (!btn) return;
    event.preventDefault();
    var desc = btn.getAttribute('data-matcher-desc') || '';
    var attr = btn.getAttribute('data-matcher-attr') || '';
    if (!window.confirm('「' + desc + '」と「' + attr + '」を一致として登録しますか？')) {
      return;
    }
    fetch('/register', {
      method: 'POST',
      headers: { 'Content-Type': 'application/json' },
      body: JSON.stringify({ desc: desc, attr: attr })
    }).then(function (res) {
      if (res.ok) {
        window.location.reload();
      } else {
        window.alert('登録に失敗しました');
      }
    }).catch(function () {
      window.alert('登録に失敗しました');
    });
  });
})();
`

func (s *Server) handleStylesheet(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(matcherCSS))
}

func (s *Server) handleScript(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(matcherJS))
}
