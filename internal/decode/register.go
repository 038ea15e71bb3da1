package decode

import "github.com/DrJosh9000/capview/internal/registry"

// Well-known UDP/TCP ports wired at the PORT layer (spec §4.4 step 5).
const (
	PortDNS    = 53
	PortMDNS   = 5353
	PortLLMNR  = 5355
	PortNBNS   = 137
	PortNBDS   = 138
	PortDHCPSrv = 67
	PortDHCPCli = 68
	PortHTTP   = 80
	PortIMAP   = 143
	PortSMTP   = 25
	PortSNMP   = 161
	PortSSDP   = 1900
	PortTLS    = 443
	PortSMB    = 445
)

// RegisterAll wires every protocol handler this system knows into reg, then
// freezes it. It is the single place that binds wire keys to handlers —
// the canonical reference for which layer/key combination a given
// protocol lives at (spec §4.3, §4.4).
//
// ICMPv6 is registered here explicitly at (IP_PROTO, 58): one of the two
// known upstream trees this decoder is descended from left ICMPv6 out of
// its own registration table even though a handler for it existed,
// effectively making every ICMPv6 packet UNK_PROTOCOL. The wiring list
// below is authoritative, so that omission can't recur silently.
func RegisterAll(reg *registry.Registry) {
	reg.Register(registry.LayerLink, 0, EthernetHandler{}, "ETH", "Ethernet")

	reg.Register(registry.LayerLLC802, 0, LLCHandler{}, "LLC", "802.2 Logical Link Control")

	reg.Register(registry.LayerEthertype, EtherTypeIPv4, IPv4Handler{}, "IPv4", "Internet Protocol v4")
	reg.Register(registry.LayerEthertype, EtherTypeIPv6, IPv6Handler{}, "IPv6", "Internet Protocol v6")
	reg.Register(registry.LayerEthertype, EtherTypeARP, ARPHandler{}, "ARP", "Address Resolution Protocol")

	reg.Register(registry.LayerIPProto, IPProtoICMP, ICMPHandler{}, "ICMP", "Internet Control Message Protocol")
	reg.Register(registry.LayerIPProto, IPProtoICMPv6, ICMPv6Handler{}, "ICMPv6", "Internet Control Message Protocol v6")
	reg.Register(registry.LayerIPProto, IPProtoIGMP, IGMPHandler{}, "IGMP", "Internet Group Management Protocol")
	reg.Register(registry.LayerIPProto, IPProtoPIM, PIMHandler{}, "PIM", "Protocol Independent Multicast")
	reg.Register(registry.LayerIPProto, IPProtoTCP, TCPHandler{Reg: reg}, "TCP", "Transmission Control Protocol")
	reg.Register(registry.LayerIPProto, IPProtoUDP, UDPHandler{Reg: reg}, "UDP", "User Datagram Protocol")

	reg.Register(registry.LayerPort, PortDNS, DNSHandler{}, "DNS", "Domain Name System")
	reg.Register(registry.LayerPort, PortMDNS, DNSHandler{}, "MDNS", "Multicast DNS")
	reg.Register(registry.LayerPort, PortLLMNR, DNSHandler{}, "LLMNR", "Link-Local Multicast Name Resolution")
	reg.Register(registry.LayerPort, PortNBNS, NBNSHandler{}, "NBNS", "NetBIOS Name Service")
	reg.Register(registry.LayerPort, PortNBDS, NBNSHandler{}, "NBDS", "NetBIOS Datagram Service")
	reg.Register(registry.LayerPort, PortDHCPSrv, DHCPHandler{}, "DHCP", "Dynamic Host Configuration Protocol")
	reg.Register(registry.LayerPort, PortDHCPCli, DHCPHandler{}, "DHCP", "Dynamic Host Configuration Protocol")
	reg.Register(registry.LayerPort, PortHTTP, HTTPHandler{}, "HTTP", "Hypertext Transfer Protocol")
	reg.Register(registry.LayerPort, PortIMAP, IMAPHandler{}, "IMAP", "Internet Message Access Protocol")
	reg.Register(registry.LayerPort, PortSMTP, SMTPHandler{}, "SMTP", "Simple Mail Transfer Protocol")
	reg.Register(registry.LayerPort, PortSNMP, SNMPHandler{}, "SNMP", "Simple Network Management Protocol")
	reg.Register(registry.LayerPort, PortSSDP, SSDPHandler{}, "SSDP", "Simple Service Discovery Protocol")
	reg.Register(registry.LayerPort, PortTLS, TLSHandler{}, "TLS", "Transport Layer Security")
	reg.Register(registry.LayerPort, PortSMB, SMBHandler{}, "SMB", "Server Message Block")

	reg.Register(registry.LayerApp, llcDSAPSTP, STPHandler{}, "STP", "Spanning Tree Protocol")

	reg.Freeze()
}
