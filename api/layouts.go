package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ing-bank/zkflow-sub006/circuitgen/printer"
	"github.com/ing-bank/zkflow-sub006/log"
	stg "github.com/ing-bank/zkflow-sub006/storage"
	"github.com/ing-bank/zkflow-sub006/witness"
)

// layouts lists the layout names
// GET /layouts
func (a *API) layouts(w http.ResponseWriter, r *http.Request) {
	httpWriteJSON(w, &Layouts{Layouts: a.catalog.Names()})
}

func (a *API) urlLayout(w http.ResponseWriter, r *http.Request) (*witness.Layout, bool) {
	name := chi.URLParam(r, LayoutURLParam)
	l, err := a.catalog.Layout(name)
	if err != nil {
		errorFor(err, ErrLayoutNotFound).Write(w)
		return nil, false
	}
	return l, true
}

func slotInfos(l *witness.Layout, g witness.Group) []SlotInfo {
	slots := l.Slots(g)
	infos := make([]SlotInfo, len(slots))
	for i, s := range slots {
		infos[i] = SlotInfo{
			StateType: s.StateType,
			Type:      s.Schema.Name(),
			Length:    l.ComponentLength(g, i),
		}
	}
	return infos
}

// layout describes a layout
// GET /layouts/{name}
func (a *API) layout(w http.ResponseWriter, r *http.Request) {
	l, ok := a.urlLayout(w, r)
	if !ok {
		return
	}
	info := &LayoutInfo{
		Name:             l.Name,
		Mode:             l.Mode.String(),
		ContractCapacity: l.ContractCapacity,
		Groups:           []GroupInfo{},
		Outputs:          slotInfos(l, witness.Outputs),
		InputUTXOs:       slotInfos(l, witness.SerializedInputUTXOs),
		ReferenceUTXOs:   slotInfos(l, witness.SerializedReferenceUTXOs),
	}
	for _, g := range witness.ComponentGroups() {
		gl := l.Group(g)
		if g.Kind() != witness.KindStandard || gl.Count == 0 {
			continue
		}
		info.Groups = append(info.Groups, GroupInfo{
			Group:  g.JSONKey(),
			Type:   gl.Schema.Name(),
			Count:  gl.Count,
			Length: l.ComponentLength(g, 0),
		})
	}
	httpWriteJSON(w, info)
}

// layoutCircuit returns the generated circuit source of a layout. The
// source is generated once and kept in the storage.
// GET /layouts/{name}/circuit
func (a *API) layoutCircuit(w http.ResponseWriter, r *http.Request) {
	l, ok := a.urlLayout(w, r)
	if !ok {
		return
	}
	src, err := a.storage.Source(l.Name)
	if errors.Is(err, stg.ErrNotFound) {
		if src, err = printer.Layout(l); err != nil {
			ErrUnsupportedLayoutCircuit.WithErr(err).Write(w)
			return
		}
		if err := a.storage.SetSource(l.Name, src); err != nil {
			ErrStorageFailure.WithErr(err).Write(w)
			return
		}
		log.Infow("circuit source generated", "layout", l.Name, "bytes", len(src))
	} else if err != nil {
		ErrStorageFailure.WithErr(err).Write(w)
		return
	}
	httpWrite(w, http.StatusOK, "text/x-go; charset=utf-8", src)
}
