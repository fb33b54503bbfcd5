package behaviour

import (
	"github.com/zjrosen/diagramkit/internal/input"
	"github.com/zjrosen/diagramkit/internal/log"
	"github.com/zjrosen/diagramkit/internal/model"
)

type DrawLinkOptions struct {
	BaseOptions
}

func NewDrawLinkOptions(enabled bool) *DrawLinkOptions {
	return &DrawLinkOptions{BaseOptions: NewBaseOptions(enabled)}
}

// DrawLink starts a dangling link when a port is pressed, drags its free end
// with the pointer, and connects it when released over another port.
type DrawLink struct {
	Base
	ongoing *model.Link
}

func NewDrawLink(host Host, opts *DrawLinkOptions) *DrawLink {
	dl := &DrawLink{}
	dl.Init(host, opts, func() {
		On(&dl.Base, dl.onPointerDown)
		On(&dl.Base, dl.onPointerMove)
		On(&dl.Base, dl.onPointerUp)
	})
	dl.OnDetach(dl.abandon)
	return dl
}

// Ongoing returns the link being drawn, if any.
func (dl *DrawLink) Ongoing() *model.Link { return dl.ongoing }

// abandon removes a link still being drawn.
func (dl *DrawLink) abandon() {
	if link := dl.ongoing; link != nil {
		dl.ongoing = nil
		dl.Host().RemoveLink(link)
	}
}

func (dl *DrawLink) onPointerDown(e input.PointerDown) {
	port, ok := e.Target.(*model.Port)
	if !ok || e.Button != input.ButtonLeft {
		return
	}
	host := dl.Host()
	link := model.NewLink(host.Bus())
	if err := host.AddLinkTo(port, nil, link); err != nil {
		log.ErrorErr(log.CatBehaviour, "start link failed", err, "port", port.ID())
		return
	}
	link.SetTargetPosition(host.Diagram().ToModel(e.Client))
	dl.ongoing = link
}

func (dl *DrawLink) onPointerMove(e input.PointerMove) {
	if dl.ongoing == nil {
		return
	}
	dl.ongoing.SetTargetPosition(dl.Host().Diagram().ToModel(e.Client))
}

func (dl *DrawLink) onPointerUp(e input.PointerUp) {
	link := dl.ongoing
	if link == nil {
		return
	}
	dl.ongoing = nil
	host := dl.Host()

	target, ok := e.Target.(*model.Port)
	if !ok || target == link.Source() {
		host.RemoveLink(link)
		return
	}
	if err := host.ConnectLink(link, target); err != nil {
		log.ErrorErr(log.CatBehaviour, "connect link failed", err, "link", link.ID())
		host.RemoveLink(link)
	}
}
