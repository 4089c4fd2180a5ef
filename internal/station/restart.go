package station

import (
	"os/exec"

	log "github.com/sirupsen/logrus"
)

// RebootRestarter restarts the host through the system reboot command
type RebootRestarter struct{}

// Restart executes reboot; the countdown already persisted everything
func (RebootRestarter) Restart() error {
	log.Warn("Rebooting device")
	return exec.Command("reboot").Run()
}
