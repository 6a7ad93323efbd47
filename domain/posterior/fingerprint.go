package posterior

import (
	"fmt"

	"gocredible/domain/core"
)

// Fingerprint identifies the inputs of a run. Runs with equal fingerprints
// produce identical samples.
func Fingerprint(obs Observations, cfg SamplerConfig, prior string) core.Hash {
	data := make([]byte, 0, len(obs.values)+128)
	for _, v := range obs.values {
		data = append(data, '0'+v)
	}
	data = fmt.Appendf(data, "|%s|%+v", prior, cfg)
	return core.NewHash(data)
}
