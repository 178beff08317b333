package pgcast

import (
	"math/bits"
	"net"
	"strconv"
)

// Inet represents both inet and cidr PostgreSQL types.
type Inet struct {
	IPNet *net.IPNet
	Valid bool
}

// ParseInet parses an address with an optional "/prefix" suffix. An address
// without a prefix gets a full length mask. Host bits beyond the prefix are
// cleared. Text that is not an address yields an invalid Inet, not an error.
func ParseInet(s string) Inet {
	if ip := net.ParseIP(s); ip != nil {
		if ipv4 := ip.To4(); ipv4 != nil {
			ip = ipv4
		}
		bitCount := len(ip) * 8
		return Inet{IPNet: &net.IPNet{IP: ip, Mask: net.CIDRMask(bitCount, bitCount)}, Valid: true}
	}

	_, ipnet, err := net.ParseCIDR(s)
	if err != nil {
		return Inet{}
	}
	if ipv4 := ipnet.IP.To4(); ipv4 != nil {
		switch ones, _ := ipnet.Mask.Size(); {
		case len(ipnet.Mask) == net.IPv4len:
			ipnet.IP = ipv4
		case ones >= 96:
			// IPv4-mapped network, e.g. ::ffff:10.0.0.0/104 is 10.0.0.0/8.
			ipnet.IP = ipv4
			ipnet.Mask = net.CIDRMask(ones-96, 32)
		}
	}
	return Inet{IPNet: ipnet, Valid: true}
}

// FormatInet renders inet as "address/prefix". The prefix is the number of set
// bits in the mask. ok is false for an invalid Inet.
func FormatInet(inet Inet) (s string, ok bool) {
	if !inet.Valid || inet.IPNet == nil {
		return "", false
	}
	return string(appendInet(nil, inet.IPNet)), true
}

func appendInet(buf []byte, ipnet *net.IPNet) []byte {
	ones := 0
	for _, b := range ipnet.Mask {
		ones += bits.OnesCount8(b)
	}

	if ipv4 := ipnet.IP.To4(); ipv4 != nil && len(ipnet.Mask) == net.IPv6len {
		// net.IP.String prints mapped addresses in dotted form, which only
		// parses back with a prefix that fits 32 bits.
		if ones >= 96 {
			buf = append(buf, ipv4.String()...)
			buf = append(buf, '/')
			return strconv.AppendInt(buf, int64(ones-96), 10)
		}
		buf = append(buf, "::ffff:"...)
	}

	buf = append(buf, ipnet.IP.String()...)
	buf = append(buf, '/')
	return strconv.AppendInt(buf, int64(ones), 10)
}

type InetCodec struct{}

func (InetCodec) AppendText(buf []byte, inet Inet) []byte {
	if !inet.Valid || inet.IPNet == nil {
		return nil
	}
	return appendInet(buf, inet.IPNet)
}

// Decode never fails. Absent or unparsable text yields an invalid Inet.
func (InetCodec) Decode(in Input[Inet]) Inet {
	switch in.Kind() {
	case InputNull:
		return Inet{}
	case InputTyped:
		inet, _ := in.Value()
		return inet
	}

	s, _ := in.Text()
	return ParseInet(s)
}

func (inet Inet) String() string {
	s, _ := FormatInet(inet)
	return s
}
