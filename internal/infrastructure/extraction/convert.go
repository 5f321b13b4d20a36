package extraction

import (
	"strconv"
	"strings"
	"time"

	"pr_compliance_service/internal/domain/raw"
)

type apiUser struct {
	Login string `json:"login"`
}

type apiRef struct {
	Ref string `json:"ref"`
	SHA string `json:"sha"`
}

type apiPullRequest struct {
	ID        int64      `json:"id"`
	Number    int        `json:"number"`
	State     string     `json:"state"`
	User      apiUser    `json:"user"`
	CreatedAt *time.Time `json:"created_at"`
	MergedAt  *time.Time `json:"merged_at"`
	Base      apiRef     `json:"base"`
	Head      apiRef     `json:"head"`
}

func (p apiPullRequest) toRaw(repository string) raw.PullRequest {
	id := strconv.FormatInt(p.ID, 10)

	// GitHub reports merged PRs as "closed"; merged_at disambiguates.
	state := p.State
	if state == "closed" && p.MergedAt != nil {
		state = "merged"
	}

	return raw.PullRequest{
		ID:         &id,
		Number:     &p.Number,
		Repository: &repository,
		Author:     &p.User.Login,
		State:      &state,
		CreatedAt:  p.CreatedAt,
		MergedAt:   p.MergedAt,
		BaseBranch: &p.Base.Ref,
		HeadBranch: &p.Head.Ref,
	}
}

type apiReview struct {
	ID          int64      `json:"id"`
	User        apiUser    `json:"user"`
	State       string     `json:"state"`
	SubmittedAt *time.Time `json:"submitted_at"`
}

func (r apiReview) toRaw(prID string) raw.Review {
	id := strconv.FormatInt(r.ID, 10)
	state := strings.ToLower(r.State)

	return raw.Review{
		ID:            &id,
		PullRequestID: &prID,
		Reviewer:      &r.User.Login,
		State:         &state,
		SubmittedAt:   r.SubmittedAt,
	}
}

type apiCommit struct {
	SHA    string `json:"sha"`
	Author struct {
		Login string `json:"login"`
	} `json:"author"`
	Commit struct {
		Author struct {
			Name string     `json:"name"`
			Date *time.Time `json:"date"`
		} `json:"author"`
	} `json:"commit"`
}

func (c apiCommit) toRaw(prID string) raw.Commit {
	author := c.Author.Login
	if author == "" {
		author = c.Commit.Author.Name
	}

	return raw.Commit{
		SHA:           &c.SHA,
		PullRequestID: &prID,
		Author:        &author,
		CommittedAt:   c.Commit.Author.Date,
	}
}

type apiCheckRun struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Status      string     `json:"status"`
	Conclusion  *string    `json:"conclusion"`
	CompletedAt *time.Time `json:"completed_at"`
}

func (c apiCheckRun) toRaw(prID string) raw.CheckRun {
	id := strconv.FormatInt(c.ID, 10)

	return raw.CheckRun{
		ID:            &id,
		PullRequestID: &prID,
		Name:          &c.Name,
		Status:        &c.Status,
		Conclusion:    c.Conclusion,
		CompletedAt:   c.CompletedAt,
	}
}
