// Package testutil provides an in-process stand-in for the parts of the
// Tableau REST API that tabrefresh talks to.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

const (
	Token  = "test-session-token"
	SiteID = "site-0001"
	UserID = "user-0001"
)

type Project struct {
	ID   string
	Name string
}

type DataSource struct {
	ID        string
	Name      string
	ProjectID string
}

type ListingMode int

const (
	// ListingPaginated answers project listings with paginated json.
	ListingPaginated ListingMode = iota
	// ListingJsonNoPagination answers with a json listing lacking a
	// pagination block.
	ListingJsonNoPagination
	// ListingXml answers with an xml document.
	ListingXml
	// ListingGarbage answers with a body that is neither json nor xml.
	ListingGarbage
)

type TableauParams struct {
	Site     string
	Username string
	Password string

	Projects    []Project
	DataSources []DataSource
	Listing     ListingMode
	// PageSize overrides the page size the server answers with, 0 honors the request.
	PageSize int

	// RefreshStatus and RefreshBody, when set, make every refresh fail.
	RefreshStatus int
	RefreshBody   string
}

// TableauServer records what the client did so tests can assert on it.
type TableauServer struct {
	*httptest.Server
	params TableauParams

	mu           sync.Mutex
	signIns      int
	signOuts     int
	refreshed    []string
	listRequests int
	requests     int
}

func NewTableauServer(t testing.TB, params TableauParams) *TableauServer {
	s := &TableauServer{params: params}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/", s.route)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func (s *TableauServer) SignIns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signIns
}

func (s *TableauServer) SignOuts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signOuts
}

// Requests counts every request the server received.
func (s *TableauServer) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

func (s *TableauServer) ListRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listRequests
}

// Refreshed returns the ids of the data sources a refresh was queued for.
func (s *TableauServer) Refreshed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.refreshed...)
}

func writeJson(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json;charset=UTF-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, summary string) {
	writeJson(w, status, map[string]any{
		"error": map[string]any{"code": code, "summary": summary},
	})
}

func (s *TableauServer) route(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests++
	s.mu.Unlock()

	// /api/{version}/...
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 3 {
		http.NotFound(w, r)
		return
	}
	rest := parts[2:]

	if rest[0] == "auth" && len(rest) == 2 {
		switch rest[1] {
		case "signin":
			s.signIn(w, r)
			return
		case "signout":
			s.signOut(w, r)
			return
		}
	}

	if r.Header.Get("X-Tableau-Auth") != Token {
		writeError(w, http.StatusUnauthorized, "401002", "Unauthorized Access")
		return
	}
	if len(rest) < 3 || rest[0] != "sites" || rest[1] != SiteID {
		writeError(w, http.StatusNotFound, "404000", "Site not found")
		return
	}

	switch {
	case len(rest) == 3 && rest[2] == "projects" && r.Method == http.MethodGet:
		s.listProjects(w, r)
	case len(rest) == 3 && rest[2] == "datasources" && r.Method == http.MethodGet:
		s.listDataSources(w, r)
	case len(rest) == 5 && rest[2] == "datasources" && rest[4] == "refresh" && r.Method == http.MethodPost:
		s.refresh(w, rest[3])
	default:
		http.NotFound(w, r)
	}
}

func (s *TableauServer) signIn(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Credentials struct {
			Name     string `json:"name"`
			Password string `json:"password"`
			Site     struct {
				ContentUrl string `json:"contentUrl"`
			} `json:"site"`
		} `json:"credentials"`
	}
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "400000", "Bad Request")
		return
	}

	creds := body.Credentials
	if creds.Name != s.params.Username ||
		creds.Password != s.params.Password ||
		creds.Site.ContentUrl != s.params.Site {
		writeError(w, http.StatusUnauthorized, "401001", "Signin Error")
		return
	}

	s.mu.Lock()
	s.signIns++
	s.mu.Unlock()

	writeJson(w, http.StatusOK, map[string]any{
		"credentials": map[string]any{
			"token": Token,
			"site":  map[string]any{"id": SiteID, "contentUrl": s.params.Site},
			"user":  map[string]any{"id": UserID},
		},
	})
}

func (s *TableauServer) signOut(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-Tableau-Auth") != Token {
		writeError(w, http.StatusUnauthorized, "401002", "Unauthorized Access")
		return
	}
	s.mu.Lock()
	s.signOuts++
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func pageParams(r *http.Request, override int) (number, size int) {
	number, _ = strconv.Atoi(r.URL.Query().Get("pageNumber"))
	if number <= 0 {
		number = 1
	}
	size, _ = strconv.Atoi(r.URL.Query().Get("pageSize"))
	if override > 0 {
		size = override
	}
	if size <= 0 {
		size = 100
	}
	return number, size
}

func pageBounds(number, size, total int) (int, int) {
	start := (number - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	return start, end
}

func (s *TableauServer) listProjects(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.listRequests++
	s.mu.Unlock()

	records := []map[string]any{}
	for _, p := range s.params.Projects {
		records = append(records, map[string]any{"id": p.ID, "name": p.Name})
	}

	switch s.params.Listing {
	case ListingJsonNoPagination:
		writeJson(w, http.StatusOK, map[string]any{
			"projects": map[string]any{"project": records},
		})
	case ListingXml:
		w.Header().Set("Content-Type", "application/xml;charset=UTF-8")
		var out strings.Builder
		out.WriteString(`<?xml version='1.0' encoding='UTF-8'?>`)
		out.WriteString(`<tsResponse xmlns="http://tableau.com/api"><projects>`)
		for _, p := range s.params.Projects {
			fmt.Fprintf(&out, `<project id="%s"><name>%s</name></project>`, p.ID, p.Name)
		}
		out.WriteString(`</projects></tsResponse>`)
		w.Write([]byte(out.String()))
	case ListingGarbage:
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("upstream proxy says hello"))
	default:
		number, size := pageParams(r, s.params.PageSize)
		start, end := pageBounds(number, size, len(records))
		writeJson(w, http.StatusOK, map[string]any{
			"pagination": map[string]any{
				"pageNumber":     strconv.Itoa(number),
				"pageSize":       strconv.Itoa(size),
				"totalAvailable": strconv.Itoa(len(records)),
			},
			"projects": map[string]any{"project": records[start:end]},
		})
	}
}

func (s *TableauServer) listDataSources(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("filter")
	name, ok := strings.CutPrefix(filter, "name:eq:")
	// separators inside a value break the real filter grammar
	if filter != "" && (!ok || strings.ContainsAny(name, ",:")) {
		writeError(w, http.StatusBadRequest, "400065", "Invalid filter")
		return
	}

	projectNames := map[string]string{}
	for _, p := range s.params.Projects {
		projectNames[p.ID] = p.Name
	}

	records := []map[string]any{}
	for _, ds := range s.params.DataSources {
		// the real api matches case insensitively
		if filter != "" && !strings.EqualFold(ds.Name, name) {
			continue
		}
		records = append(records, map[string]any{
			"id":   ds.ID,
			"name": ds.Name,
			"project": map[string]any{
				"id":   ds.ProjectID,
				"name": projectNames[ds.ProjectID],
			},
		})
	}

	number, size := pageParams(r, s.params.PageSize)
	start, end := pageBounds(number, size, len(records))
	writeJson(w, http.StatusOK, map[string]any{
		"pagination": map[string]any{
			"pageNumber":     strconv.Itoa(number),
			"pageSize":       strconv.Itoa(size),
			"totalAvailable": strconv.Itoa(len(records)),
		},
		"datasources": map[string]any{"datasource": records[start:end]},
	})
}

func (s *TableauServer) refresh(w http.ResponseWriter, id string) {
	if s.params.RefreshStatus != 0 {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(s.params.RefreshStatus)
		w.Write([]byte(s.params.RefreshBody))
		return
	}

	found := false
	for _, ds := range s.params.DataSources {
		if ds.ID == id {
			found = true
			break
		}
	}
	if !found {
		writeError(w, http.StatusNotFound, "404031", "Datasource not found")
		return
	}

	s.mu.Lock()
	s.refreshed = append(s.refreshed, id)
	jobID := fmt.Sprintf("job-%d", len(s.refreshed))
	s.mu.Unlock()

	writeJson(w, http.StatusAccepted, map[string]any{
		"job": map[string]any{"id": jobID, "mode": "Asynchronous", "type": "RefreshExtract"},
	})
}
