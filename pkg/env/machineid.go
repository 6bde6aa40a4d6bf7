package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// MachineID returns a short stable ID of the machine, used as the default
// node ID. The raw machine ID is hashed with the application name so it is
// not exposed on the wire. The hostname is used if no machine ID exists.
func MachineID() string {
	id, err := machineid.ProtectedID("tempair")
	if err != nil {
		glog.V(1).Infof("machine id unavailable: %v", err)
		if host, err := os.Hostname(); err == nil && host != "" {
			return host
		}
		return "tempair"
	}
	return id[:12]
}
