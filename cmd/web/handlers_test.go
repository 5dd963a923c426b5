package main

import (
	"bufio"
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/evidenx/evidenx/internal/chat"
	"github.com/evidenx/evidenx/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	rohanAudioID  = "22c99559-efca-4e6b-a0df-75a2a3d15ba9"
	sameerAudioID = "6852a8a3-63ed-4392-9edf-28737776b7ce"
)

func Test_healthy(t *testing.T) {
	server := startTestServer(t)
	resp, err := server.Client().Get(context.Background(), "/api/healthy")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func Test_dashboard(t *testing.T) {
	ctx := context.Background()
	server := startTestServer(t)
	client := server.Client()

	doc, err := client.GetDoc(ctx, "/")
	require.NoError(t, err)
	assert.Equal(t, "Showing 1 of 1 cases", strings.TrimSpace(doc.Find("[data-testid=case-count]").Text()))
	assert.Equal(t, 1, doc.Find("[data-case-id]").Length())
	assert.Contains(t, doc.Find(".notice").Text(), "2 private cases are hidden")
	assert.Equal(t, "badge badge-blue", doc.Find(`.case-card span[data-value="Open"]`).AttrOr("class", ""))

	_, err = client.Login(ctx, testToken)
	require.NoError(t, err)
	doc, err = client.GetDoc(ctx, "/")
	require.NoError(t, err)
	assert.Equal(t, "Showing 3 of 3 cases", strings.TrimSpace(doc.Find("[data-testid=case-count]").Text()))
	assert.Equal(t, testInvestigator, doc.Find(".investigator").Text())

	t.Run("filters", func(t *testing.T) {
		doc, err = client.GetDoc(ctx, "/?search=fraud&status=all&visibility=Private")
		require.NoError(t, err)
		cards := doc.Find("[data-case-id]")
		require.Equal(t, 1, cards.Length())
		assert.Equal(t, "3", cards.AttrOr("data-case-id", ""))
	})

	t.Run("logout hides private cases again", func(t *testing.T) {
		doc, err = client.Logout(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Showing 1 of 1 cases", strings.TrimSpace(doc.Find("[data-testid=case-count]").Text()))
	})
}

func Test_login(t *testing.T) {
	ctx := context.Background()
	server := startTestServer(t)
	client := server.Client()

	doc, status, err := client.SubmitFormStatus(ctx, "/login", "/login", url.Values{"token": {"wrong"}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "Invalid access token", doc.Find("[role=alert]").Text())

	t.Run("private case redirects to sign in and back", func(t *testing.T) {
		resp, err := client.Get(ctx, "/cases/1")
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, "/login", resp.Request.URL.Path)
		assert.Equal(t, "/cases/1", resp.Request.URL.Query().Get("next"))

		doc, err = client.SubmitForm(ctx, "/login?next=%2Fcases%2F1", "/login", url.Values{"token": {testToken}})
		require.NoError(t, err)
		assert.Equal(t, "Lady Missing from Kochi Office", strings.TrimSpace(doc.Find("h1").Text()))
	})
}

func Test_notFound(t *testing.T) {
	ctx := context.Background()
	_, client := startSignedInClient(t)

	tests := []struct {
		name    string
		path    string
		message string
	}{
		{"missing case", "/cases/does-not-exist", "Case not found"},
		{"missing evidence", "/cases/1/evidence/does-not-exist", "Evidence not found"},
		{"evidence of another case", "/cases/2/evidence/ev1", "Evidence not found"},
		{"unknown page", "/nothing/here", "Page not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, status, err := client.GetDocStatus(ctx, tt.path)
			require.NoError(t, err)
			assert.Equal(t, http.StatusNotFound, status)
			assert.Equal(t, tt.message, strings.TrimSpace(doc.Find("h1").Text()))
		})
	}
}

func Test_caseDetails(t *testing.T) {
	ctx := context.Background()
	_, client := startSignedInClient(t)

	doc, err := client.GetDoc(ctx, "/cases/1")
	require.NoError(t, err)
	assert.Equal(t, "Showing 6 of 6 items", strings.TrimSpace(doc.Find("[data-testid=evidence-count]").Text()))
	assert.Equal(t, 5, doc.Find(".timeline.compact li").Length())

	doc, err = client.GetDoc(ctx, "/cases/1?search=washroom")
	require.NoError(t, err)
	assert.Equal(t, "Showing 2 of 6 items", strings.TrimSpace(doc.Find("[data-testid=evidence-count]").Text()))

	t.Run("selecting two witness recordings enables the comparison", func(t *testing.T) {
		for _, id := range []string{rohanAudioID, "ev1", sameerAudioID} {
			doc, err = client.SubmitForm(ctx, "/cases/1", "/cases/1/selection", url.Values{"evidence_id": {id}})
			require.NoError(t, err)
		}
		selection := doc.Find("#selection")
		assert.Equal(t, "3", selection.AttrOr("data-count", ""))
		href := selection.Find("a.btn-primary").AttrOr("href", "")
		assert.Equal(t, "/cases/1/compare?ids="+url.QueryEscape(rohanAudioID+","+sameerAudioID), href)

		doc, err = client.SubmitForm(ctx, "/cases/1", "/cases/1/selection/clear", nil)
		require.NoError(t, err)
		assert.Equal(t, "0", doc.Find("#selection").AttrOr("data-count", ""))
	})

	t.Run("htmx swaps only the selection bar", func(t *testing.T) {
		var status int
		for i, id := range []string{rohanAudioID, sameerAudioID} {
			doc, status, err = client.SubmitHxForm(ctx, "/cases/1", "/cases/1/selection", url.Values{"evidence_id": {id}})
			require.NoError(t, err)
			require.Equal(t, http.StatusOK, status)
			assert.Equal(t, strconv.Itoa(i+1), doc.Find("#selection").AttrOr("data-count", ""))
			assert.Zero(t, doc.Find("h1").Length())
		}
		href := doc.Find("#selection a.btn-primary").AttrOr("href", "")
		assert.Equal(t, "/cases/1/compare?ids="+url.QueryEscape(rohanAudioID+","+sameerAudioID), href)

		doc, status, err = client.SubmitHxForm(ctx, "/cases/1", "/cases/1/selection/clear", nil)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "0", doc.Find("#selection").AttrOr("data-count", ""))
	})

	t.Run("plain form posts redirect back to the case", func(t *testing.T) {
		status, location, err := client.SubmitFormNoRedirect(ctx, "/cases/1", "/cases/1/selection",
			url.Values{"evidence_id": {rohanAudioID}})
		require.NoError(t, err)
		assert.Equal(t, http.StatusSeeOther, status)
		assert.Equal(t, "/cases/1", location)
	})
}

func Test_registerCase(t *testing.T) {
	ctx := context.Background()
	server := startTestServer(t)
	client := server.Client()

	resp, err := client.Get(ctx, "/cases/new")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, "/login", resp.Request.URL.Path, "registration requires sign in")

	_, err = client.Login(ctx, testToken)
	require.NoError(t, err)

	doc, status, err := client.SubmitFormStatus(ctx, "/cases/new", "/cases/new", url.Values{
		"firNumber": {"FIR/2024/001"},
		"title":     {"Duplicate"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "Case Summary is required", doc.Find(`[data-field=summary]`).Text())
	assert.Equal(t, "Duplicate", doc.Find("input#title").AttrOr("value", ""))

	form := url.Values{
		"firNumber":            {"FIR/2024/001"},
		"title":                {"Stolen Laptop"},
		"summary":              {"A laptop was stolen from a parked car."},
		"petitioner":           {"Ravi Kumar"},
		"accused":              {"Unknown"},
		"investigatingOfficer": {"Inspector Nair"},
		"location":             {"Kochi"},
		"visibility":           {"Public"},
	}
	doc, status, err = client.SubmitFormStatus(ctx, "/cases/new", "/cases/new", form)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "FIR Number is already registered", doc.Find(`[data-field=firNumber]`).Text())

	form.Set("firNumber", "FIR/2024/099")
	doc, err = client.SubmitForm(ctx, "/cases/new", "/cases/new", form)
	require.NoError(t, err)
	assert.Equal(t, "Stolen Laptop", strings.TrimSpace(doc.Find("h1").Text()))
	assert.Equal(t, "Open", doc.Find(".case-header span[data-value=Open]").Text())
}

func Test_timeline(t *testing.T) {
	ctx := context.Background()
	_, client := startSignedInClient(t)

	doc, err := client.GetDoc(ctx, "/cases/1/timeline")
	require.NoError(t, err)
	assert.Equal(t, "Showing 6 of 6 events", strings.TrimSpace(doc.Find("[data-testid=event-count]").Text()))
	assert.Equal(t, "Case Registered", doc.Find(".timeline-event h2").First().Text())

	doc, err = client.GetDoc(ctx, "/cases/1/timeline?source=audio&search=interview")
	require.NoError(t, err)
	events := doc.Find(".timeline-event")
	assert.Equal(t, 2, events.Length())
	assert.Equal(t, "/cases/1/evidence/"+rohanAudioID, events.First().Find("a").AttrOr("href", ""))
}

func Test_incidents(t *testing.T) {
	ctx := context.Background()
	_, client := startSignedInClient(t)

	doc, err := client.GetDoc(ctx, "/cases/1/incidents")
	require.NoError(t, err)
	assert.Equal(t, 8, doc.Find(".lane").Length())
	assert.Equal(t, 1, doc.Find(".lane.highlighted").Length())
	assert.Equal(t, "Guard Manoj", doc.Find(`.lane[data-actor=witness1] .lane-label span`).Last().Text())
	assert.Equal(t, "11:00", doc.Find(".tick").First().Text())
	assert.Equal(t, "10-09", strings.TrimSpace(doc.Find(".dates li").Eq(1).Text()))

	t.Run("selected event shows its details", func(t *testing.T) {
		href := doc.Find(`.lane[data-actor=witness1] .event-block`).First().AttrOr("href", "")
		require.NotEmpty(t, href)
		doc, err = client.GetDoc(ctx, href)
		require.NoError(t, err)
		assert.Equal(t, "Guard begins duty at main entrance", doc.Find("#event-details h2").Text())
	})

	t.Run("month view marks the incident days", func(t *testing.T) {
		doc, err = client.GetDoc(ctx, "/cases/1/incidents?mode=month&year=2024&month=10")
		require.NoError(t, err)
		assert.Equal(t, "October 2024", strings.TrimSpace(doc.Find(".month-header h2").Text()))
		// October 2024 starts on a Tuesday.
		assert.Equal(t, 2, doc.Find(".calendar li.blank").Length())
		incidentDays := doc.Find(".calendar li.incident")
		require.Equal(t, 1, incidentDays.Length())
		assert.True(t, strings.HasPrefix(strings.TrimSpace(incidentDays.Text()), "9"))
	})
}

func Test_compare(t *testing.T) {
	ctx := context.Background()
	_, client := startSignedInClient(t)

	doc, err := client.GetDoc(ctx, "/cases/1/compare?ids="+rohanAudioID+",ev1")
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Find("[data-testid=compare-notice]").Length())

	doc, err = client.GetDoc(ctx, "/cases/1/compare?ids="+rohanAudioID+","+sameerAudioID)
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Find(".witness").Length())
	assert.Equal(t, 5, doc.Find(".analysis-item").Length())
	assert.Equal(t, "2", doc.Find(`.status-filters [data-status=gray_area] .count`).Text())

	doc, err = client.GetDoc(ctx, "/cases/1/compare?ids="+rohanAudioID+","+sameerAudioID+"&status=contradiction")
	require.NoError(t, err)
	items := doc.Find(".analysis-item")
	require.Equal(t, 1, items.Length())
	assert.Equal(t, "Ananya's Demeanor at Departure", items.Find("h3").Text())
	assert.Equal(t, "badge badge-red", items.Find("span[data-value=contradiction]").AttrOr("class", ""))
}

func Test_videoEvidence(t *testing.T) {
	ctx := context.Background()
	_, client := startSignedInClient(t)
	path := "/cases/1/evidence/ev1"

	doc, err := client.GetDoc(ctx, path+"?t=01:00")
	require.NoError(t, err)
	assert.Equal(t, "01:00 / 2:34:15", doc.Find("[data-testid=position]").Text())
	assert.Equal(t, 0, doc.Find(".detection-box").Length())

	doc, err = client.SubmitForm(ctx, path, path+"/ask", url.Values{"query": {"Person in Pink"}})
	require.NoError(t, err)
	answers := doc.Find("#video-assistant .answer")
	require.Equal(t, 1, answers.Length())
	assert.Equal(t, "Found person in pink top at following timestamps:", answers.Text())
	assert.Equal(t, "06:38 / 2:34:15", doc.Find("[data-testid=position]").Text(), "jumps to the first detection")
	box := doc.Find(".detection-box")
	require.Equal(t, 1, box.Length())
	assert.Equal(t, "36.12", box.AttrOr("data-left", ""))
	assert.Equal(t, 2, doc.Find(".flag.flag-red").Length())

	doc, err = client.GetDoc(ctx, path+"?t=10:13")
	require.NoError(t, err)
	box = doc.Find(".detection-box")
	require.Equal(t, 1, box.Length())
	assert.Equal(t, "67.37", box.AttrOr("data-left", ""))
	assert.Equal(t, "46.19", box.AttrOr("data-height", ""))

	doc, err = client.GetDoc(ctx, "/cases/2/evidence/ev5")
	require.NoError(t, err)
	assert.Zero(t, doc.Find(".detection-box").Length())

	doc, err = client.SubmitForm(ctx, path, path+"/ask", url.Values{"query": {"a purple elephant"}})
	require.NoError(t, err)
	assert.Equal(t, chat.NoDetections, doc.Find("#video-assistant .answer").Last().Text())
}

func Test_audioFollowUps(t *testing.T) {
	ctx := context.Background()
	_, client := startSignedInClient(t)
	path := "/cases/1/evidence/" + rohanAudioID

	doc, err := client.GetDoc(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 8, doc.Find(".marker").Length())
	assert.Equal(t, 50, doc.Find(".waveform .bar").Length())
	assert.Equal(t, 3, doc.Find(".follow-ups [data-question-id]").Length())

	doc, err = client.SubmitForm(ctx, path, path+"/followups", url.Values{"question": {"  Who else was on the call?  "}})
	require.NoError(t, err)
	questions := doc.Find(".follow-ups [data-question-id]")
	require.Equal(t, 4, questions.Length())
	assert.Equal(t, "Who else was on the call?", questions.Last().Find("span").Text())

	id := questions.First().AttrOr("data-question-id", "")
	doc, err = client.SubmitForm(ctx, path, path+"/followups/"+id+"/delete", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, doc.Find(".follow-ups [data-question-id]").Length())
}

func Test_assistant(t *testing.T) {
	ctx := context.Background()
	_, client := startSignedInClient(t)

	doc, err := client.SubmitForm(ctx, "/cases/1", "/cases/1/chat/toggle", nil)
	require.NoError(t, err)
	require.Equal(t, 1, doc.Find("form[action='/cases/1/chat']").Length())

	doc, err = client.SubmitForm(ctx, "/cases/1", "/cases/1/chat", url.Values{"question": {"Where was Ananya last seen?"}})
	require.NoError(t, err)
	message := doc.Find(".chat-message")
	require.Equal(t, 1, message.Length())
	assert.Equal(t, "Where was Ananya last seen?", message.Find(".question").Text())
	messageID := strings.TrimPrefix(message.AttrOr("id", ""), "message-")
	require.NotEmpty(t, messageID)

	// Without a configured knowledge base the answer fails and the stream carries the failure message.
	streamCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	resp, err := client.Get(streamCtx, "/cases/1/chat/"+messageID+"/stream")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	var events []string
	var done string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if event, ok := strings.CutPrefix(line, "event: "); ok {
			events = append(events, event)
		}
		if data, ok := strings.CutPrefix(line, "data: "); ok && len(events) > 0 && events[len(events)-1] == "done" {
			done = data
		}
	}
	require.NotEmpty(t, events)
	assert.Equal(t, "done", events[len(events)-1])
	assert.Contains(t, done, chat.FailureMessage)
	assert.Contains(t, done, `"failed":true`)

	doc, err = client.GetDoc(ctx, "/cases/1")
	require.NoError(t, err)
	assert.Equal(t, chat.FailureMessage, doc.Find(".chat-message .answer.failed").Text())

	t.Run("anonymous visitors can't stream private cases", func(t *testing.T) {
		server := startTestServer(t)
		resp, err := server.Client().Get(ctx, "/cases/1/chat/"+messageID+"/stream")
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("htmx appends a single chat message", func(t *testing.T) {
		doc, status, err := client.SubmitHxForm(ctx, "/cases/1", "/cases/1/chat",
			url.Values{"question": {"Who met Ananya at the entrance?"}})
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, status)
		messages := doc.Find(".chat-message")
		require.Equal(t, 1, messages.Length())
		assert.Equal(t, "Who met Ananya at the entrance?", messages.Find(".question").Text())
		assert.Zero(t, doc.Find("h1").Length())

		_, status, err = client.SubmitHxForm(ctx, "/cases/1", "/cases/1/chat", url.Values{"question": {"  "}})
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, status)
	})

	t.Run("plain question posts redirect to the assistant", func(t *testing.T) {
		status, location, err := client.SubmitFormNoRedirect(ctx, "/cases/1", "/cases/1/chat", url.Values{"question": {""}})
		require.NoError(t, err)
		assert.Equal(t, http.StatusSeeOther, status)
		assert.Equal(t, "/cases/1#assistant", location)
	})
}

func Test_api(t *testing.T) {
	ctx := context.Background()
	server := startTestServer(t)
	client := server.Client()

	status, err := client.API(ctx, http.MethodGet, "/api/v1/cases/", "", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, err = client.API(ctx, http.MethodGet, "/api/v1/cases/", "wrong", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, status)

	var cases []models.Case
	status, err = client.API(ctx, http.MethodGet, "/api/v1/cases/", testToken, nil, &cases)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, cases, 3)

	var c models.Case
	status, err = client.API(ctx, http.MethodGet, "/api/v1/cases/2", testToken, nil, &c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "FIR/2024/002", c.FIRNumber)

	var apiErr apiErrorResponse
	status, err = client.API(ctx, http.MethodGet, "/api/v1/cases/nope", testToken, nil, &apiErr)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Case not found", apiErr.Error)

	var events []models.TimelineEvent
	status, err = client.API(ctx, http.MethodGet, "/api/v1/timeline/case/1", testToken, nil, &events)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, events, 6)
	for i := 1; i < len(events); i++ {
		assert.False(t, events[i].Timestamp.Before(events[i-1].Timestamp))
	}

	status, err = client.API(ctx, http.MethodGet,
		"/api/v1/video/search/1/query-knowledge-base?query=who", testToken, nil, &apiErr)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, status)

	t.Run("create case", func(t *testing.T) {
		var invalid apiValidationResponse
		status, err = client.API(ctx, http.MethodPost, "/api/v1/cases/", testToken,
			map[string]string{"title": "Missing fields"}, &invalid)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, status)
		assert.Equal(t, "FIR Number is required", invalid.Fields["firNumber"])

		var created models.Case
		status, err = client.API(ctx, http.MethodPost, "/api/v1/cases/", testToken, map[string]string{
			"firNumber":            "FIR/2024/100",
			"title":                "Chain Snatching",
			"summary":              "Gold chain snatched near the bus stand.",
			"petitioner":           "Meera Das",
			"accused":              "Two unknown men on a motorcycle",
			"investigatingOfficer": "Sub-Inspector Rao",
			"location":             "Ernakulam",
		}, &created)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, status)
		assert.Equal(t, models.CaseStatusOpen, created.Status)
		assert.Equal(t, models.VisibilityPrivate, created.Visibility)

		status, err = client.API(ctx, http.MethodGet, "/api/v1/cases/"+created.ID, testToken, nil, &c)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Chain Snatching", c.Title)
	})
}
