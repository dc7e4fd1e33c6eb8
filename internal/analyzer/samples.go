package analyzer

// SampleLog is a built-in example log for trying the analyzer.
type SampleLog struct {
	Name string `json:"name"`
	Log  string `json:"log"`
}

// Samples returns the built-in example logs.
func Samples() []SampleLog {
	return []SampleLog{
		{
			Name: "Port Scan",
			Log: `# Fields: ts uid id.orig_h id.resp_p proto scan_attempts anomaly_type severity
1709913600.123456 CXWfwc3LHJYnCZGbt3 192.168.1.100 22 tcp 15 Port_Scanning Medium
1709913605.234567 CXWfwc3LHJYnCZGbt4 192.168.1.100 23 tcp 12 Port_Scanning Medium
1709913610.345678 CXWfwc3LHJYnCZGbt5 192.168.1.100 25 tcp 18 Port_Scanning Medium
1709913615.456789 CXWfwc3LHJYnCZGbt6 192.168.1.100 80 tcp 20 Port_Scanning High
1709913620.567890 CXWfwc3LHJYnCZGbt7 192.168.1.100 443 tcp 25 Port_Scanning High`,
		},
		{
			Name: "DoS Attack",
			Log: `# Fields: ts uid id.orig_h id.resp_h id.resp_p proto service packets_count anomaly_type severity
1709913700.123456 CXWfwc3LHJYnCZGbt8 192.168.1.101 192.168.1.1 80 tcp http 5000 SYN_Flood High
1709913705.234567 CXWfwc3LHJYnCZGbt9 192.168.1.101 192.168.1.1 80 tcp http 6000 SYN_Flood High
1709913710.345678 CXWfwc3LHJYnCZGbta 192.168.1.101 192.168.1.1 80 tcp http 7500 SYN_Flood Critical
1709913715.456789 CXWfwc3LHJYnCZGbtb 192.168.1.101 192.168.1.1 80 tcp http 8000 SYN_Flood Critical
1709913720.567890 CXWfwc3LHJYnCZGbtc 192.168.1.101 192.168.1.1 80 tcp http 9000 SYN_Flood Critical`,
		},
		{
			Name: "Brute Force",
			Log: `# Fields: ts uid id.orig_h id.resp_h id.resp_p proto service login_attempts user anomaly_type severity
1709913800.123456 CXWfwc3LHJYnCZGbtd 192.168.1.102 192.168.1.1 22 tcp ssh 10 admin Brute_Force_SSH Medium
1709913805.234567 CXWfwc3LHJYnCZGbte 192.168.1.102 192.168.1.1 22 tcp ssh 15 admin Brute_Force_SSH Medium
1709913810.345678 CXWfwc3LHJYnCZGbtf 192.168.1.102 192.168.1.1 22 tcp ssh 20 admin Brute_Force_SSH High
1709913815.456789 CXWfwc3LHJYnCZGbtg 192.168.1.102 192.168.1.1 22 tcp ssh 25 admin Brute_Force_SSH High
1709913820.567890 CXWfwc3LHJYnCZGbth 192.168.1.102 192.168.1.1 22 tcp ssh 30 admin Brute_Force_SSH Critical`,
		},
		{
			Name: "Data Exfiltration",
			Log: `# Fields: ts uid id.orig_h id.resp_h id.resp_p proto service data_size anomaly_type severity
1709913900.123456 CXWfwc3LHJYnCZGbti 192.168.1.103 203.0.113.100 53 udp dns 1024 DNS_Exfiltration Medium
1709913905.234567 CXWfwc3LHJYnCZGbtj 192.168.1.103 203.0.113.100 53 udp dns 2048 DNS_Exfiltration Medium
1709913910.345678 CXWfwc3LHJYnCZGbtk 192.168.1.103 203.0.113.100 53 udp dns 4096 DNS_Exfiltration High
1709913915.456789 CXWfwc3LHJYnCZGbtl 192.168.1.103 203.0.113.100 53 udp dns 8192 DNS_Exfiltration High
1709913920.567890 CXWfwc3LHJYnCZGbtm 192.168.1.103 203.0.113.100 53 udp dns 16384 DNS_Exfiltration Critical`,
		},
	}
}
