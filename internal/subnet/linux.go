//go:build linux

package subnet

import (
	"bytes"
	"fmt"
	"net"
	"os/exec"
	"regexp"
)

// linuxPlatform configures subnets on dedicated dummy interfaces, since
// Linux's loopback device does not support the BSD-style alias model.
type linuxPlatform struct{}

func defaultPlatform() Platform { return &linuxPlatform{} }

func (l *linuxPlatform) Name() string { return "linux" }

var linuxInetLine = regexp.MustCompile(`inet (\d+\.\d+\.\d+\.\d+/\d+)`)

// DetectExisting parses `ip addr show` output for every inet address
// already present on the host.
func (l *linuxPlatform) DetectExisting() ([]*net.IPNet, error) {
	out, err := exec.Command("ip", "addr", "show").Output()
	if err != nil {
		return nil, fmt.Errorf("ip addr show: %w", err)
	}

	var nets []*net.IPNet
	for _, match := range linuxInetLine.FindAllStringSubmatch(string(out), -1) {
		_, n, err := net.ParseCIDR(match[1])
		if err != nil {
			continue
		}
		nets = append(nets, n)
	}
	return nets, nil
}

// Configure probes dummy0 through dummy254 for the first name `ip link
// show` reports as absent, creates it, and assigns cidr.
func (l *linuxPlatform) Configure(cidr *net.IPNet) (string, error) {
	for slot := 0; slot < MaxSubnets; slot++ {
		iface := fmt.Sprintf("dummy%d", slot)
		if dummyExists(iface) {
			continue
		}

		if err := run("ip", "link", "add", iface, "type", "dummy"); err != nil {
			return "", fmt.Errorf("create dummy interface: %w", err)
		}
		if err := run("ip", "addr", "add", cidr.String(), "dev", iface); err != nil {
			_ = run("ip", "link", "del", iface)
			return "", fmt.Errorf("assign address: %w", err)
		}
		if err := run("ip", "link", "set", iface, "up"); err != nil {
			_ = run("ip", "link", "del", iface)
			return "", fmt.Errorf("bring interface up: %w", err)
		}
		return iface, nil
	}
	return "", fmt.Errorf("no free dummy interface slot in range 0-%d", MaxSubnets-1)
}

// Remove deletes the address and the dummy interface previously created
// by Configure.
func (l *linuxPlatform) Remove(cidr *net.IPNet, iface string) error {
	if err := run("ip", "addr", "del", cidr.String(), "dev", iface); err != nil {
		return fmt.Errorf("remove address: %w", err)
	}
	if err := run("ip", "link", "del", iface); err != nil {
		return fmt.Errorf("delete dummy interface: %w", err)
	}
	return nil
}

func dummyExists(iface string) bool {
	return exec.Command("ip", "link", "show", iface).Run() == nil
}

func run(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %v: %w: %s", name, args, err, stderr.String())
	}
	return nil
}
