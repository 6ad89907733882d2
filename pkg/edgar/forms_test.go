package edgar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyForm(t *testing.T) {
	tests := []struct {
		form string
		want FormClass
	}{
		{"DEF 14A", FormClass{Kind: KindProxyStatement, Revision: RevisionOriginal}},
		{"def14a", FormClass{Kind: KindProxyStatement, Revision: RevisionOriginal}},
		{"DEFR14A", FormClass{Kind: KindProxyStatement, Revision: RevisionRevision}},
		{"DEFA14A", FormClass{Kind: KindProxySupplement, Revision: RevisionSupplement}},
		{"DEFC14A", FormClass{Kind: KindContestantProxy, Revision: RevisionOriginal}},
		{"PREC14A", FormClass{Kind: KindContestantProxy, Revision: RevisionOriginal}},
		{"PRRN14A", FormClass{Kind: KindContestantProxy, Revision: RevisionOriginal}},
		{"10-K", FormClass{Kind: KindOther, Revision: RevisionOther}},
		{"", FormClass{Kind: KindOther, Revision: RevisionOther}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyForm(tt.form), "form %q", tt.form)
	}
}
