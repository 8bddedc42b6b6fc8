package refresh

import (
	"context"
	"tabrefresh/lib/tableau"
)

// fakeAPI records calls and answers with whatever the test configured.
type fakeAPI struct {
	signInErr  error
	signOutErr error

	projects    []tableau.Project
	projectsErr error
	rawBody     []byte
	rawErr      error

	job        tableau.Job
	refreshErr error
	// refreshPanic makes RefreshDataSource panic with this value
	refreshPanic any

	calls    []string
	signOuts int
	// signOutCtxErr is ctx.Err() as SignOut saw it
	signOutCtxErr error
}

var fakeSession = tableau.Session{Token: "token", SiteID: "site", UserID: "user"}

func (f *fakeAPI) SignIn(ctx context.Context, creds tableau.Credentials) (tableau.Session, error) {
	f.calls = append(f.calls, "SignIn")
	if f.signInErr != nil {
		return tableau.Session{}, f.signInErr
	}
	return fakeSession, nil
}

func (f *fakeAPI) SignOut(ctx context.Context, session tableau.Session) error {
	f.calls = append(f.calls, "SignOut")
	f.signOuts++
	f.signOutCtxErr = ctx.Err()
	return f.signOutErr
}

func (f *fakeAPI) QueryAllProjects(ctx context.Context, session tableau.Session) ([]tableau.Project, error) {
	f.calls = append(f.calls, "QueryAllProjects")
	return f.projects, f.projectsErr
}

func (f *fakeAPI) QueryProjects(ctx context.Context, session tableau.Session) ([]byte, error) {
	f.calls = append(f.calls, "QueryProjects")
	return f.rawBody, f.rawErr
}

func (f *fakeAPI) RefreshDataSource(ctx context.Context, session tableau.Session, name, projectID string) (tableau.Job, error) {
	f.calls = append(f.calls, "RefreshDataSource:"+name+":"+projectID)
	if f.refreshPanic != nil {
		panic(f.refreshPanic)
	}
	return f.job, f.refreshErr
}
