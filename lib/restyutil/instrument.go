package restyutil

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

type InstrumentOutput interface {
	Write(id string, contents string)
}

// DumpMessages writes every completed request/response pair on `client`
// to `output`, named by a per-client sequence number and the method.
//
// `output` can be nil, in which case this is a no-op.
func DumpMessages(client *resty.Client, output InstrumentOutput) {
	if output == nil {
		return
	}

	var idcounter uint64
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		id := atomic.AddUint64(&idcounter, 1)
		name := fmt.Sprintf("%03d_%s.txt", id, res.Request.Method)
		output.Write(name, FormatHttpMessage(res))
		slog.DebugContext(
			res.Request.Context(), "wrote http message",
			"method", res.Request.Method,
			"url", res.Request.URL,
			"message_id", name,
		)
		return nil
	})
}
