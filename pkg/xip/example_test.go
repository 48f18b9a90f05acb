package xip_test

import (
	"fmt"

	"github.com/omeyang/ipkit/pkg/xip"
)

func ExampleParse() {
	r, err := xip.Parse("192.168.1.0/24", 0)
	if err != nil {
		panic(err)
	}
	fmt.Println(r.From())
	fmt.Println(r.To())
	fmt.Println(r.Size())
	// Output:
	// 192.168.1.0
	// 192.168.1.255
	// 256
}

func ExampleParse_compact() {
	r, err := xip.Parse("192.168.1-200", xip.AllowCompact)
	if err != nil {
		panic(err)
	}
	fmt.Println(r.From(), "~", r.To())
	// Output:
	// 192.168.1.0 ~ 192.168.200.255
}

func ExampleRange() {
	// "127.0.*.*" 与 "127.0.0.0/16" 是同一区间的两种写法，能力集一致。
	r := xip.MustParse("127.0.*.*", 0)

	mask, _ := r.SubnetMask()
	fmt.Println(mask)
	fmt.Println(r.Type())
	fmt.Println(r.ReverseDNSZones()[0])

	sub, _ := r.AsSubnet()
	fmt.Println(sub)
	// Output:
	// 255.255.0.0
	// loopback
	// 0.127.in-addr.arpa
	// 127.0.0.0/16
}

func ExampleMerge() {
	merged, err := xip.Merge(
		xip.MustParse("10.0.0.0/25", 0),
		xip.MustParse("10.0.0.128/25", 0),
		xip.MustParse("192.168.1.10-192.168.1.20", 0),
	)
	if err != nil {
		panic(err)
	}
	for _, r := range merged {
		fmt.Println(r)
	}
	// Output:
	// 10.0.0.0-10.0.0.255
	// 192.168.1.10-192.168.1.20
}

func ExampleSubnets() {
	r := xip.MustParse("10.0.0.1-10.0.0.8", 0)
	for _, sub := range xip.Subnets(r) {
		fmt.Println(sub)
	}
	// Output:
	// 10.0.0.1/32
	// 10.0.0.2/31
	// 10.0.0.4/30
	// 10.0.0.8/32
}

func ExampleHosts() {
	sub, err := xip.MustParse("192.168.1.0/30", 0).AsSubnet()
	if err != nil {
		panic(err)
	}
	for addr := range xip.Hosts(sub) {
		fmt.Println(addr)
	}
	// Output:
	// 192.168.1.1
	// 192.168.1.2
}
