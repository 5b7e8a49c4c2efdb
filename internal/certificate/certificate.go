// Package certificate renders approval certificates for approved event
// proposals.
package certificate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"eventhub/internal/workflow"
)

var approvalTmpl = template.Must(template.New("approval").Parse(`EVENT APPROVAL CERTIFICATE

Event:               {{.Title}}
Club:                {{.ClubName}}
Dates:               {{.StartDate.Format "2006-01-02"}} to {{.EndDate.Format "2006-01-02"}}
Requested budget:    {{.Budget.StringFixed 2}}
Allocated budget:    {{.AllocatedBudget.StringFixed 2}}
Sponsor requirement: {{.SponsorRequirement.StringFixed 2}}
Submitted by:        {{with .Submitter}}{{.Name}} <{{.Email}}>{{else}}{{.SubmittedBy}}{{end}}
Approved by:         {{with .Reviewer}}{{.Name}}{{else}}{{with .ReviewedBy}}{{.}}{{end}}{{end}}
Approved at:         {{with .ReviewedAt}}{{.Format "2006-01-02 15:04 MST"}}{{end}}
{{with .Comment}}
Reviewer comment:    {{.}}
{{end}}`))

// Renderer writes certificates as text files under Dir.
type Renderer struct {
	Dir string
	now func() time.Time
}

func NewRenderer(dir string) *Renderer {
	return &Renderer{Dir: dir, now: time.Now}
}

// Render writes the certificate for v and returns its file name.
func (r *Renderer) Render(v workflow.ProposalView) (string, error) {
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return "", errors.Wrap(err, "create reports dir")
	}
	name := fmt.Sprintf("event-approval-%s-%d.txt", v.ID, r.now().UnixNano())
	f, err := os.Create(filepath.Join(r.Dir, name))
	if err != nil {
		return "", errors.Wrap(err, "create certificate")
	}
	defer f.Close()
	if err := approvalTmpl.Execute(f, v); err != nil {
		return "", errors.Wrap(err, "render certificate")
	}
	return name, nil
}

// DocumentSetter stores the certificate file name on the proposal.
type DocumentSetter interface {
	SetApprovalDocument(ctx context.Context, id uuid.UUID, filename string) error
}

// ApprovalHook renders a certificate for every approval and records its name.
func ApprovalHook(r *Renderer, store DocumentSetter) workflow.ApprovalHook {
	return func(ctx context.Context, v workflow.ProposalView) error {
		name, err := r.Render(v)
		if err != nil {
			return err
		}
		return errors.Wrap(store.SetApprovalDocument(ctx, v.ID, name), "set approval document")
	}
}
