package diagram

// samples holds starter diagram source per type. These are skeletons meant
// to be edited, not finished diagrams.
var samples = map[Type]string{
	TypeSequence: `participant Client
participant Server
participant Database

Client -> Server: Request
Server -> Database: Query
Database --> Server: Result
Server --> Client: Response`,

	TypeClass: `class User {
  -id: Long
  -email: String
  +login()
  +logout()
}

class Order {
  -id: Long
  -status: String
  +process()
}

User "1" --> "*" Order : places`,

	TypeComponent: `component [Web Server] as WS
component [Application] as App
component [Database] as DB

WS --> App : HTTP
App --> DB : SQL`,

	TypeActivity: `start
:Initialize;
if (Check condition?) then (yes)
  :Process A;
else (no)
  :Process B;
endif
:Finalize;
stop`,
}

// Sample returns starter source for the given diagram type and whether a
// sample exists for it.
func Sample(t Type) (string, bool) {
	s, ok := samples[t]
	return s, ok
}

// SampleTypes lists the types that have samples, in precedence order.
func SampleTypes() []Type {
	var out []Type
	for _, t := range Types {
		if _, ok := samples[t]; ok {
			out = append(out, t)
		}
	}
	return out
}
