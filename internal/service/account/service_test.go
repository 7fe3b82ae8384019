package account

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"storefront-client/internal/domain"
)

type apiCall struct {
	method   string
	endpoint string
	body     interface{}
	auth     bool
}

type stubAPI struct {
	calls    []apiCall
	response json.RawMessage
	err      error
}

func (s *stubAPI) Do(_ context.Context, method, endpoint string, body interface{}, requireAuth bool) (json.RawMessage, error) {
	s.calls = append(s.calls, apiCall{method: method, endpoint: endpoint, body: body, auth: requireAuth})
	return s.response, s.err
}

type stubSessions struct {
	session domain.Session
	ok      bool
}

func (s *stubSessions) Session() (domain.Session, bool, error) {
	return s.session, s.ok, nil
}

func loggedInSessions() *stubSessions {
	return &stubSessions{session: domain.Session{Token: "tok", ClientID: 4}, ok: true}
}

func TestGetMapsFrenchFields(t *testing.T) {
	api := &stubAPI{response: json.RawMessage(`{
		"id":4,"email":"alice@example.com","prenom":"Alice","nom":"Martin","telephone":"0601020304",
		"adresses":[{"id":1,"rue":"3 rue des Lilas","code_postal":"75011","ville":"Paris","pays":"France"}]
	}`)}
	svc := New(api, loggedInSessions())

	account, err := svc.Get(context.Background(), 0)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if account.FirstName != "Alice" || account.LastName != "Martin" || account.Phone != "0601020304" {
		t.Errorf("account = %+v", account)
	}
	if len(account.Addresses) != 1 || account.Addresses[0].PostalCode != "75011" {
		t.Errorf("addresses = %+v", account.Addresses)
	}
	if account.FullName() != "Alice Martin" {
		t.Errorf("FullName = %q", account.FullName())
	}

	call := api.calls[0]
	if call.endpoint != "/api/4/parametre/" || !call.auth {
		t.Errorf("call = %+v", call)
	}
}

func TestGetWithoutSession(t *testing.T) {
	svc := New(&stubAPI{}, &stubSessions{})
	if _, err := svc.Get(context.Background(), 0); !errors.Is(err, domain.ErrClientIDMissing) {
		t.Fatalf("err = %v, want ErrClientIDMissing", err)
	}
}

func TestUpdateSendsFrenchPayload(t *testing.T) {
	api := &stubAPI{response: json.RawMessage(`{"id":4,"email":"alice@example.com","prenom":"Alice","nom":"Durand"}`)}
	svc := New(api, loggedInSessions())

	_, err := svc.Update(context.Background(), 0, UpdateInput{
		Email:     "alice@example.com",
		FirstName: "Alice",
		LastName:  "Durand",
		Phone:     "0605060708",
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	payload := api.calls[0].body.(map[string]string)
	if payload["prenom"] != "Alice" || payload["nom"] != "Durand" || payload["telephone"] != "0605060708" {
		t.Errorf("payload = %v", payload)
	}
}

func TestCreateAddressSendsSnakeCase(t *testing.T) {
	api := &stubAPI{response: json.RawMessage(`{"id":2,"rue":"1 place Bellecour","code_postal":"69002","ville":"Lyon","pays":"France"}`)}
	svc := New(api, loggedInSessions())

	created, err := svc.CreateAddress(context.Background(), 0, domain.Address{
		Street: "1 place Bellecour", PostalCode: "69002", City: "Lyon", Country: "France",
	})
	if err != nil {
		t.Fatalf("CreateAddress: %v", err)
	}
	if created.ID != 2 {
		t.Errorf("ID = %d", created.ID)
	}

	payload := api.calls[0].body.(map[string]interface{})
	for key, want := range map[string]string{
		"rue":         "1 place Bellecour",
		"code_postal": "69002",
		"ville":       "Lyon",
		"pays":        "France",
	} {
		if payload[key] != want {
			t.Errorf("payload[%q] = %v, want %q", key, payload[key], want)
		}
	}
}

func TestUpdateAddressRequiresID(t *testing.T) {
	api := &stubAPI{}
	svc := New(api, loggedInSessions())

	if _, err := svc.UpdateAddress(context.Background(), 0, domain.Address{Street: "x"}); err == nil {
		t.Fatal("expected error without address id")
	}
	if len(api.calls) != 0 {
		t.Error("request sent without address id")
	}
}

func TestDeleteAddress(t *testing.T) {
	api := &stubAPI{}
	svc := New(api, loggedInSessions())

	if err := svc.DeleteAddress(context.Background(), 0, 2); err != nil {
		t.Fatalf("DeleteAddress: %v", err)
	}
	call := api.calls[0]
	if call.method != "DELETE" || call.endpoint != "/api/4/adresses/2/" {
		t.Errorf("call = %+v", call)
	}
}
