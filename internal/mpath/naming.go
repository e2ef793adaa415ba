package mpath

import "fmt"

// DiskName derives the device node name a namespace is exposed under.
//
// With multipath disabled, nodes are keyed by controller and namespace
// instance. With multipath enabled, namespaces that have a routed node
// get a per-controller name that additionally encodes the controller id
// and is hidden from direct enumeration; namespaces without one are
// keyed by subsystem and namespace instance so numbering cannot collide
// between single- and multi-controller subsystems.
func DiskName(multipath bool, subsysInstance, ctrlInstance, cntlid, headInstance int, hasDisk bool) (name string, hidden bool) {
	if !multipath {
		return fmt.Sprintf("nvme%dn%d", ctrlInstance, headInstance), false
	}
	if hasDisk {
		return fmt.Sprintf("nvme%dc%dn%d", subsysInstance, cntlid, headInstance), true
	}
	return fmt.Sprintf("nvme%dn%d", subsysInstance, headInstance), false
}

// HeadDiskName is the routed node name for a head.
func HeadDiskName(subsysInstance, headInstance int) string {
	return fmt.Sprintf("nvme%dn%d", subsysInstance, headInstance)
}
