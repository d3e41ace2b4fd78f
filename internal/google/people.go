package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultPeopleBaseURL = "https://people.googleapis.com"

// PeopleClient fetches the user's connections from the Google People API.
type PeopleClient struct {
	baseURL string
	client  *http.Client

	// pagePause spaces out page fetches to stay under Google's rate limit.
	pagePause time.Duration
}

// PersonContact is the flattened contact we keep from a People API person.
type PersonContact struct {
	GoogleContactID string
	Name            string
	PhoneNumber     string
	Email           string
}

func NewPeopleClient() *PeopleClient {
	return &PeopleClient{
		baseURL:   defaultPeopleBaseURL,
		client:    &http.Client{Timeout: 30 * time.Second},
		pagePause: 100 * time.Millisecond,
	}
}

type connectionsResponse struct {
	Connections   []person `json:"connections"`
	NextPageToken string   `json:"nextPageToken"`
}

type person struct {
	ResourceName string `json:"resourceName"`
	Names        []struct {
		DisplayName string         `json:"displayName"`
		Metadata    fieldMetadata  `json:"metadata"`
	} `json:"names"`
	PhoneNumbers []struct {
		Value         string        `json:"value"`
		CanonicalForm string        `json:"canonicalForm"`
		Metadata      fieldMetadata `json:"metadata"`
	} `json:"phoneNumbers"`
	EmailAddresses []struct {
		Value    string        `json:"value"`
		Metadata fieldMetadata `json:"metadata"`
	} `json:"emailAddresses"`
}

type fieldMetadata struct {
	Primary bool `json:"primary"`
}

// ListConnections walks every page of the user's connections and returns
// the flattened contacts.
func (p *PeopleClient) ListConnections(ctx context.Context, accessToken string) ([]PersonContact, error) {
	var all []PersonContact
	pageToken := ""

	for {
		q := url.Values{}
		q.Set("personFields", "names,emailAddresses,phoneNumbers")
		q.Set("pageSize", "1000")
		if pageToken != "" {
			q.Set("pageToken", pageToken)
		}

		reqURL := p.baseURL + "/v1/people/me/connections?" + q.Encode()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+accessToken)
		req.Header.Set("Accept", "application/json")

		resp, err := p.client.Do(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("Google API error: %s", resp.Status)
		}

		var page connectionsResponse
		err = json.NewDecoder(resp.Body).Decode(&page)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}

		for _, per := range page.Connections {
			all = append(all, flattenPerson(per))
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			return all, nil
		}

		select {
		case <-time.After(p.pagePause):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// flattenPerson picks the primary name/phone/email, falling back to the
// first entry of each list.
func flattenPerson(per person) PersonContact {
	out := PersonContact{GoogleContactID: per.ResourceName}

	if len(per.Names) > 0 {
		name := per.Names[0]
		for _, n := range per.Names {
			if n.Metadata.Primary {
				name = n
				break
			}
		}
		out.Name = name.DisplayName
	}

	if len(per.PhoneNumbers) > 0 {
		phone := per.PhoneNumbers[0]
		for _, ph := range per.PhoneNumbers {
			if ph.Metadata.Primary {
				phone = ph
				break
			}
		}
		// canonicalForm is E.164 when Google has it.
		if phone.CanonicalForm != "" {
			out.PhoneNumber = phone.CanonicalForm
		} else {
			out.PhoneNumber = phone.Value
		}
	}

	if len(per.EmailAddresses) > 0 {
		email := per.EmailAddresses[0]
		for _, e := range per.EmailAddresses {
			if e.Metadata.Primary {
				email = e
				break
			}
		}
		out.Email = email.Value
	}

	return out
}
