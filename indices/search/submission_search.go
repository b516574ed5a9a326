package search

import (
	"encoding/json"
	"flowdeck/client/es"
	"flowdeck/domain"
	"flowdeck/domain/submission"
	"flowdeck/indices"
	"flowdeck/session"
	"fmt"
	"strings"
)

var (
	SearchFlowSubmissionsFunc = SearchFlowSubmissions
)

// SearchFlowSubmissions answers submission queries from the search index
// instead of the database, scoped to the caller's visible tenants.
func SearchFlowSubmissions(q submission.FlowSubmissionQuery, s *session.Session) ([]domain.FlowSubmission, error) {
	visibleTenants := s.VisibleTenants()
	if len(visibleTenants) == 0 {
		return []domain.FlowSubmission{}, nil
	}

	filters := make([]es.H, 0, 4)
	filters = append(filters, es.H{"terms": es.H{"tenantId": visibleTenants}})
	if q.TenantID != 0 {
		filters = append(filters, es.H{"term": es.H{"tenantId": q.TenantID}})
	}
	if q.TemplateID != 0 {
		filters = append(filters, es.H{"term": es.H{"templateId": q.TemplateID}})
	}
	if q.Status != "" {
		filters = append(filters, es.H{"term": es.H{"status": q.Status}})
	}

	sorts := []es.H{{"submittedAt": es.H{"order": "desc"}}}

	root := es.H{"bool": es.H{"filter": filters}}
	r, err := es.SearchFunc(indices.SubmissionIndexName, es.H{"size": 10000, "query": root, "sort": sorts}, s)
	if err != nil {
		return nil, err
	}

	records := make([]domain.FlowSubmission, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		record := domain.FlowSubmission{}
		if err := json.NewDecoder(strings.NewReader(string(hit.Source))).Decode(&record); err != nil {
			return nil, fmt.Errorf(string(hit.Source))
		}
		records = append(records, record)
	}
	return records, nil
}
