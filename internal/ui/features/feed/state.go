package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/bookfeed/internal/session"
)

const (
	sessionName = "bookfeed"
	idKey       = "sid"
	stateKey    = "state"
)

// browserSession is one browser's cookie-backed search state.
type browserSession struct {
	raw   *sessions.Session
	id    string
	state session.State
}

// loadSession reads the browser's state. An unreadable or missing cookie
// starts a fresh session.
func (h *Handlers) loadSession(r *http.Request) *browserSession {
	raw, err := h.sessionStore.Get(r, sessionName)
	if err != nil {
		h.logger.Debug("starting new session", "reason", err)
	}
	if raw == nil {
		raw = sessions.NewSession(h.sessionStore, sessionName)
	}

	bs := &browserSession{raw: raw, state: session.New()}
	if id, ok := raw.Values[idKey].(string); ok && id != "" {
		bs.id = id
	} else {
		bs.id = uuid.NewString()
		raw.Values[idKey] = bs.id
	}

	if blob, ok := raw.Values[stateKey].(string); ok {
		var st session.State
		if err := json.Unmarshal([]byte(blob), &st); err == nil {
			bs.state = st.Normalize()
		}
	}
	return bs
}

// save writes the state back to the cookie. It must run before the response
// body starts.
func (bs *browserSession) save(w http.ResponseWriter, r *http.Request) error {
	blob, err := json.Marshal(bs.state)
	if err != nil {
		return err
	}
	bs.raw.Values[stateKey] = string(blob)
	return bs.raw.Save(r, w)
}

// searchSignals is what the search form posts. Categories bound to a set of
// checkboxes arrive as an array; an object of name→checked is accepted too.
type searchSignals struct {
	Term       string         `json:"term"`
	Categories categorySignal `json:"categories"`
}

type categorySignal []string

func (c *categorySignal) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*c = list
		return nil
	}
	if len(data) > 0 && data[0] == '{' {
		names, err := checkedInOrder(data)
		if err != nil {
			return err
		}
		*c = names
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	if single != "" {
		*c = []string{single}
	}
	return nil
}

// checkedInOrder returns the keys of a name→checked object whose value is
// true, in the order they appear. That order becomes the regex alternation.
func checkedInOrder(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	out := []string{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, _ := tok.(string)
		var on bool
		if err := dec.Decode(&on); err != nil {
			return nil, fmt.Errorf("category %q: %w", name, err)
		}
		if on {
			out = append(out, name)
		}
	}
	_, err := dec.Token()
	return out, err
}
